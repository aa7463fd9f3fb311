package badges

import (
	"fmt"
	"strings"
	"time"
)

// TierThreshold is the minimum whole-month tenure required for a tier label.
type TierThreshold struct {
	Months int
	Label  string
}

// TierTable is ordered by strictly increasing Months.
type TierTable []TierThreshold

// NitroTiers are the Nitro tenure badges.
var NitroTiers = TierTable{
	{Months: 1, Label: "Nitro Bronze"},
	{Months: 3, Label: "Nitro Silver"},
	{Months: 6, Label: "Nitro Gold"},
	{Months: 12, Label: "Nitro Platinum"},
	{Months: 24, Label: "Nitro Diamond"},
	{Months: 36, Label: "Nitro Emerald"},
	{Months: 60, Label: "Nitro Ruby"},
	{Months: 72, Label: "Nitro Opal"},
}

// BoostTiers are the server booster badge levels.
var BoostTiers = TierTable{
	{Months: 1, Label: "Server Booster (1 Month)"},
	{Months: 2, Label: "Server Booster (2 Months)"},
	{Months: 3, Label: "Server Booster (3 Months)"},
	{Months: 6, Label: "Server Booster (6 Months)"},
	{Months: 9, Label: "Server Booster (9 Months)"},
	{Months: 12, Label: "Server Booster (12 Months)"},
	{Months: 15, Label: "Server Booster (15 Months)"},
	{Months: 18, Label: "Server Booster (18 Months)"},
	{Months: 24, Label: "Server Booster (24 Months)"},
}

// Validate checks that thresholds are non-negative, strictly increasing and labelled.
func (t TierTable) Validate() error {
	for i, th := range t {
		if th.Label == "" {
			return fmt.Errorf("%w: tier at %d months has no label", ErrInvalidTable, th.Months)
		}
		if th.Months < 0 {
			return fmt.Errorf("%w: tier %s has negative threshold", ErrInvalidTable, th.Label)
		}
		if i > 0 && th.Months <= t[i-1].Months {
			return fmt.Errorf("%w: threshold %d for %s is not greater than %d",
				ErrInvalidTable, th.Months, th.Label, t[i-1].Months)
		}
	}
	return nil
}

// Lookup returns the greatest threshold not exceeding months.
func (t TierTable) Lookup(months int) (TierThreshold, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if months >= t[i].Months {
			return t[i], true
		}
	}
	return TierThreshold{}, false
}

// Lowest returns the base tier.
func (t TierTable) Lowest() (TierThreshold, bool) {
	if len(t) == 0 {
		return TierThreshold{}, false
	}
	return t[0], true
}

// Rank returns the index of label in the table, or -1.
func (t TierTable) Rank(label string) int {
	for i, th := range t {
		if th.Label == label {
			return i
		}
	}
	return -1
}

// Milestone is the next tier a tenure will reach.
type Milestone struct {
	Months          int    `json:"months"`
	Tier            string `json:"tier_label"`
	MonthsRemaining int    `json:"months_remaining"`
}

// NextMilestone returns the first threshold strictly greater than months,
// or nil once the highest threshold has been reached.
func (t TierTable) NextMilestone(months int) *Milestone {
	for _, th := range t {
		if th.Months > months {
			return &Milestone{
				Months:          th.Months,
				Tier:            th.Label,
				MonthsRemaining: th.Months - months,
			}
		}
	}
	return nil
}

// Indicators are indirect profile signals of an active subscription.
type Indicators struct {
	AnimatedAvatar bool
	Banner         bool
	Decoration     bool
	PremiumType    int
}

// Any reports whether at least one indicator is present.
func (i Indicators) Any() bool {
	return i.AnimatedAvatar || i.Banner || i.Decoration || i.PremiumType > 0
}

// Reasons lists the present indicators in a fixed order.
func (i Indicators) Reasons() []string {
	var reasons []string
	if i.AnimatedAvatar {
		reasons = append(reasons, "animated avatar")
	}
	if i.Banner {
		reasons = append(reasons, "profile banner")
	}
	if i.Decoration {
		reasons = append(reasons, "avatar decoration")
	}
	if i.PremiumType > 0 {
		reasons = append(reasons, fmt.Sprintf("premium type %d", i.PremiumType))
	}
	return reasons
}

// TierInput is everything tier inference may look at.
type TierInput struct {
	// SubscriptionStart is the raw upstream timestamp; nil when unavailable.
	SubscriptionStart *string
	Indicators        Indicators
}

// TierResult is the outcome of one inference. Exact and Estimated are
// mutually exclusive.
type TierResult struct {
	Tier              string  `json:"tier_label"`
	Exact             bool    `json:"exact"`
	Estimated         bool    `json:"estimated"`
	ElapsedMonths     *int    `json:"elapsed_months"`
	SubscriptionStart *string `json:"subscription_start"`
	Justification     *string `json:"justification"`
}

// Method returns "exact", "estimated" or "none" for metrics and logs.
func (r *TierResult) Method() string {
	switch {
	case r == nil:
		return "none"
	case r.Exact:
		return "exact"
	default:
		return "estimated"
	}
}

// Infer derives a tier from input, evaluated at now.
//
// A parseable timestamp always yields at least the lowest tier with Exact set.
// An absent or unparseable timestamp falls back to the indicators, yielding the
// lowest tier marked Estimated. With neither, Infer returns nil.
func (t TierTable) Infer(in TierInput, now time.Time) *TierResult {
	lowest, ok := t.Lowest()
	if !ok {
		return nil
	}

	if in.SubscriptionStart != nil {
		raw := strings.TrimSpace(*in.SubscriptionStart)
		if start, err := ParseTimestamp(raw); err == nil {
			months := ElapsedMonths(start, now)
			th, found := t.Lookup(months)
			if !found {
				th = lowest
			}
			return &TierResult{
				Tier:              th.Label,
				Exact:             true,
				ElapsedMonths:     &months,
				SubscriptionStart: &raw,
			}
		}
	}

	if !in.Indicators.Any() {
		return nil
	}
	justification := "no subscription timestamp available; estimated from " +
		strings.Join(in.Indicators.Reasons(), ", ")
	return &TierResult{
		Tier:          lowest.Label,
		Estimated:     true,
		Justification: &justification,
	}
}
