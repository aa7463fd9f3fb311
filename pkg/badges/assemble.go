package badges

// Assemble appends the tier badge to the flag-derived labels unless an
// identical label (case-sensitive) is already present. flagLabels is not modified.
func Assemble(flagLabels []string, tier *TierResult) []string {
	out := make([]string, 0, len(flagLabels)+1)
	out = append(out, flagLabels...)
	if tier == nil || tier.Tier == "" {
		return out
	}
	for _, label := range out {
		if label == tier.Tier {
			return out
		}
	}
	return append(out, tier.Tier)
}
