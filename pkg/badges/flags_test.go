package badges

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFlags_Zero(t *testing.T) {
	got := DecodeFlags(0)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeNullable_Nil(t *testing.T) {
	got := DefaultFlagDecoder().DecodeNullable(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeFlags_Staff(t *testing.T) {
	assert.Equal(t, []string{"Discord Employee"}, DecodeFlags(1))
}

func TestDecodeFlags_HighBits(t *testing.T) {
	tests := []struct {
		name string
		mask uint64
		want []string
	}{
		{"bit 44", 1 << 44, []string{"Quarantined (unstable)"}},
		{"bit 50", 1 << 50, []string{"Collaborator (unstable)"}},
		{"bit 51", 1 << 51, []string{"Restricted Collaborator (unstable)"}},
		{"bit 50 literal", 1125899906842624, []string{"Collaborator (unstable)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeFlags(tt.mask))
		})
	}
}

func TestDecodeFlags_TableOrder(t *testing.T) {
	// HAS_UNREAD_URGENT_MESSAGES (bit 13) is declared after ACTIVE_DEVELOPER (bit 22),
	// QUARANTINED (bit 44) after RESTRICTED_COLLABORATOR (bit 51).
	mask := uint64(1<<13 | 1<<22 | 1<<44 | 1<<51 | 1<<9)
	want := []string{
		"Early Supporter",
		"Active Developer",
		"Has Unread Urgent Messages",
		"Restricted Collaborator (unstable)",
		"Quarantined (unstable)",
	}
	assert.Equal(t, want, DecodeFlags(mask))
}

func TestDecodeFlags_UnknownBitsIgnored(t *testing.T) {
	mask := uint64(1<<11 | 1<<12 | 1<<15 | 1<<63)
	assert.Empty(t, DecodeFlags(mask))
	assert.Equal(t, []string{"Partnered Server Owner"}, DecodeFlags(mask|1<<1))
}

func TestDecodeFlags_ContainsIffBitSet(t *testing.T) {
	for _, f := range DefaultFlags {
		label := DefaultFlagLabels[f.Name]
		all := ^uint64(0)

		assert.Contains(t, DecodeFlags(f.Mask()), label, f.Name)
		assert.Contains(t, DecodeFlags(all), label, f.Name)
		assert.NotContains(t, DecodeFlags(all&^f.Mask()), label, f.Name)
	}
	assert.Len(t, DecodeFlags(^uint64(0)), len(DefaultFlags))
}

func TestFlagDecoder_LabelFallback(t *testing.T) {
	decoder, err := NewFlagDecoder(FlagTable{
		{Name: "STAFF", Bit: 0},
		{Name: "SECRET", Bit: 40},
	}, FlagLabelTable{"STAFF": "Discord Employee"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Discord Employee", "SECRET"}, decoder.Decode(1|1<<40))
}

func TestFlagTable_Validate(t *testing.T) {
	tests := []struct {
		name  string
		table FlagTable
	}{
		{"duplicate bit", FlagTable{{Name: "A", Bit: 1}, {Name: "B", Bit: 1}}},
		{"duplicate name", FlagTable{{Name: "A", Bit: 1}, {Name: "A", Bit: 2}}},
		{"bit out of range", FlagTable{{Name: "A", Bit: 64}}},
		{"empty name", FlagTable{{Name: "", Bit: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlagDecoder(tt.table, nil)
			assert.True(t, errors.Is(err, ErrInvalidTable), "got %v", err)
		})
	}
	assert.NoError(t, DefaultFlags.Validate())
}

func TestBitfield_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Flags *Bitfield `json:"public_flags"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"public_flags": 2251799813685249}`), &payload))
	require.NotNil(t, payload.Flags)
	assert.Equal(t, uint64(1<<51|1), payload.Flags.Uint64())

	payload.Flags = nil
	require.NoError(t, json.Unmarshal([]byte(`{"public_flags": "17592186044416"}`), &payload))
	assert.Equal(t, uint64(1<<44), payload.Flags.Uint64())

	payload.Flags = nil
	require.NoError(t, json.Unmarshal([]byte(`{"public_flags": null}`), &payload))
	assert.Nil(t, payload.Flags)
	assert.Equal(t, uint64(0), payload.Flags.Uint64())

	err := json.Unmarshal([]byte(`{"public_flags": -1}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidBitfield)
}
