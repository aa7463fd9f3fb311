package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

type tierOutput struct {
	Result        *badges.TierResult `json:"result"`
	NextMilestone *badges.Milestone  `json:"next_milestone"`
}

func newTierCmd() *cobra.Command {
	var (
		since  string
		months int
		boost  bool
		asJSON bool
		now    string
	)

	tierCmd := &cobra.Command{
		Use:   "tier",
		Short: "Compute the tenure tier for a start timestamp or month count",
		Long: `Compute the Nitro (or, with --boost, server booster) tier for a tenure.
Months are whole 30-day periods.

Example:
  badgeapi tier --since 2024-01-15T10:00:00Z
  badgeapi tier --months 13 --boost`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sinceSet := cmd.Flags().Changed("since")
			monthsSet := cmd.Flags().Changed("months")
			if sinceSet == monthsSet {
				return errors.New("exactly one of --since or --months is required")
			}
			if monthsSet && months < 0 {
				return errors.New("--months must not be negative")
			}

			at := time.Now().UTC()
			if now != "" {
				t, err := badges.ParseTimestamp(now)
				if err != nil {
					return err
				}
				at = t
			}

			if monthsSet {
				since = at.Add(-time.Duration(months) * badges.MonthApprox).Format(time.RFC3339)
			} else if _, err := badges.ParseTimestamp(since); err != nil {
				return err
			}

			table := badges.NitroTiers
			if boost {
				table = badges.BoostTiers
			}

			result := table.Infer(badges.TierInput{SubscriptionStart: &since}, at)
			var next *badges.Milestone
			if result != nil && result.ElapsedMonths != nil {
				next = table.NextMilestone(*result.ElapsedMonths)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tierOutput{Result: result, NextMilestone: next})
			}
			if result == nil {
				fmt.Fprintln(out, "no tier")
				return nil
			}
			fmt.Fprintf(out, "%s (%d months)\n", result.Tier, *result.ElapsedMonths)
			if next != nil {
				fmt.Fprintf(out, "next: %s in %d months\n", next.Tier, next.MonthsRemaining)
			} else {
				fmt.Fprintln(out, "next: highest tier reached")
			}
			return nil
		},
	}

	tierCmd.Flags().StringVar(&since, "since", "", "Subscription start timestamp (RFC 3339)")
	tierCmd.Flags().IntVar(&months, "months", 0, "Elapsed whole months")
	tierCmd.Flags().BoolVar(&boost, "boost", false, "Use the server booster table")
	tierCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	tierCmd.Flags().StringVar(&now, "now", "", "Evaluate at this time instead of the current time")
	_ = tierCmd.Flags().MarkHidden("now")
	return tierCmd
}
