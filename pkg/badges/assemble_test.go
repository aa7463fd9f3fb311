package badges

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemble(t *testing.T) {
	flags := []string{"Early Supporter"}

	got := Assemble(flags, &TierResult{Tier: "Nitro Gold", Exact: true})
	assert.Equal(t, []string{"Early Supporter", "Nitro Gold"}, got)
	assert.Equal(t, []string{"Early Supporter"}, flags, "input must not be modified")

	assert.Equal(t, flags, Assemble(flags, nil))
}

func TestAssemble_SuppressesDuplicate(t *testing.T) {
	flags := []string{"Early Supporter", "Active Developer"}
	got := Assemble(flags, &TierResult{Tier: "Early Supporter", Estimated: true})
	assert.Len(t, got, len(flags))
}

func TestAssemble_CaseSensitive(t *testing.T) {
	got := Assemble([]string{"nitro bronze"}, &TierResult{Tier: "Nitro Bronze", Exact: true})
	assert.Len(t, got, 2)
}

func TestAssemble_EmptyInput(t *testing.T) {
	got := Assemble(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
