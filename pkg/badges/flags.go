package badges

import (
	"fmt"
	"strconv"
	"strings"
)

const maxFlagBit = 63

// Flag maps a symbolic user flag name to its bit position in public_flags.
type Flag struct {
	Name string
	Bit  uint
}

// Mask returns the single-bit value for the flag.
func (f Flag) Mask() uint64 {
	return uint64(1) << f.Bit
}

// FlagTable is an ordered list of flags. Decoding preserves this order.
type FlagTable []Flag

// FlagLabelTable maps symbolic flag names to display labels.
type FlagLabelTable map[string]string

// DefaultFlags lists the known Discord user flags. Several positions are
// undocumented or unstable upstream and still decode.
var DefaultFlags = FlagTable{
	{Name: "STAFF", Bit: 0},
	{Name: "PARTNER", Bit: 1},
	{Name: "HYPESQUAD_EVENTS", Bit: 2},
	{Name: "BUG_HUNTER_LEVEL_1", Bit: 3},
	{Name: "MFA_SMS", Bit: 4},
	{Name: "PREMIUM_PROMO_DISMISSED", Bit: 5},
	{Name: "HOUSE_BRAVERY", Bit: 6},
	{Name: "HOUSE_BRILLIANCE", Bit: 7},
	{Name: "HOUSE_BALANCE", Bit: 8},
	{Name: "EARLY_SUPPORTER", Bit: 9},
	{Name: "TEAM_PSEUDO_USER", Bit: 10},
	{Name: "BUG_HUNTER_LEVEL_2", Bit: 14},
	{Name: "VERIFIED_BOT", Bit: 16},
	{Name: "VERIFIED_DEVELOPER", Bit: 17},
	{Name: "CERTIFIED_MODERATOR", Bit: 18},
	{Name: "BOT_HTTP_INTERACTIONS", Bit: 19},
	{Name: "SPAMMER", Bit: 20},
	{Name: "DISABLE_PREMIUM", Bit: 21},
	{Name: "ACTIVE_DEVELOPER", Bit: 22},
	{Name: "HAS_UNREAD_URGENT_MESSAGES", Bit: 13},
	{Name: "COLLABORATOR", Bit: 50},
	{Name: "RESTRICTED_COLLABORATOR", Bit: 51},
	{Name: "QUARANTINED", Bit: 44},
}

// DefaultFlagLabels holds the display strings returned to API clients.
var DefaultFlagLabels = FlagLabelTable{
	"STAFF":                      "Discord Employee",
	"PARTNER":                    "Partnered Server Owner",
	"HYPESQUAD_EVENTS":           "HypeSquad Events",
	"BUG_HUNTER_LEVEL_1":         "Bug Hunter Level 1",
	"MFA_SMS":                    "MFA SMS (flag)",
	"PREMIUM_PROMO_DISMISSED":    "Premium Promo Dismissed",
	"HOUSE_BRAVERY":              "HypeSquad Bravery (House)",
	"HOUSE_BRILLIANCE":           "HypeSquad Brilliance (House)",
	"HOUSE_BALANCE":              "HypeSquad Balance (House)",
	"EARLY_SUPPORTER":            "Early Supporter",
	"TEAM_PSEUDO_USER":           "Team User (pseudo)",
	"BUG_HUNTER_LEVEL_2":         "Bug Hunter Level 2",
	"VERIFIED_BOT":               "Verified Bot",
	"VERIFIED_DEVELOPER":         "Early Verified Bot Developer",
	"CERTIFIED_MODERATOR":        "Discord Certified Moderator",
	"BOT_HTTP_INTERACTIONS":      "Bot HTTP Interactions",
	"SPAMMER":                    "Spammer (flag)",
	"DISABLE_PREMIUM":            "Disable Premium (flag)",
	"ACTIVE_DEVELOPER":           "Active Developer",
	"HAS_UNREAD_URGENT_MESSAGES": "Has Unread Urgent Messages",
	"COLLABORATOR":               "Collaborator (unstable)",
	"RESTRICTED_COLLABORATOR":    "Restricted Collaborator (unstable)",
	"QUARANTINED":                "Quarantined (unstable)",
}

// Validate checks that names and bit positions are unique and within 0-63.
func (t FlagTable) Validate() error {
	names := make(map[string]struct{}, len(t))
	bits := make(map[uint]string, len(t))
	for _, f := range t {
		if f.Name == "" {
			return fmt.Errorf("%w: empty flag name at bit %d", ErrInvalidTable, f.Bit)
		}
		if f.Bit > maxFlagBit {
			return fmt.Errorf("%w: flag %s uses bit %d (max %d)", ErrInvalidTable, f.Name, f.Bit, maxFlagBit)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("%w: duplicate flag name %s", ErrInvalidTable, f.Name)
		}
		if other, dup := bits[f.Bit]; dup {
			return fmt.Errorf("%w: flags %s and %s share bit %d", ErrInvalidTable, other, f.Name, f.Bit)
		}
		names[f.Name] = struct{}{}
		bits[f.Bit] = f.Name
	}
	return nil
}

// FlagDecoder turns a public_flags bitmask into display labels.
type FlagDecoder struct {
	flags  FlagTable
	labels FlagLabelTable
}

// NewFlagDecoder validates the flag table and returns a decoder.
// A nil label table makes every flag decode to its symbolic name.
func NewFlagDecoder(flags FlagTable, labels FlagLabelTable) (*FlagDecoder, error) {
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	return &FlagDecoder{flags: flags, labels: labels}, nil
}

var defaultDecoder = &FlagDecoder{flags: DefaultFlags, labels: DefaultFlagLabels}

// DefaultFlagDecoder returns the decoder for the built-in Discord tables.
func DefaultFlagDecoder() *FlagDecoder {
	return defaultDecoder
}

// Decode returns the label of every table flag whose bit is set in mask,
// in table order. Bits that are not in the table are ignored.
func (d *FlagDecoder) Decode(mask uint64) []string {
	found := make([]string, 0)
	for _, f := range d.flags {
		if mask&f.Mask() == f.Mask() {
			found = append(found, d.Label(f.Name))
		}
	}
	return found
}

// DecodeNullable decodes a possibly absent bitmask; nil yields an empty list.
func (d *FlagDecoder) DecodeNullable(mask *uint64) []string {
	if mask == nil {
		return make([]string, 0)
	}
	return d.Decode(*mask)
}

// Label returns the display label for a flag name, falling back to the name.
func (d *FlagDecoder) Label(name string) string {
	if label, ok := d.labels[name]; ok && label != "" {
		return label
	}
	return name
}

// DecodeFlags decodes mask with the built-in tables.
func DecodeFlags(mask uint64) []string {
	return defaultDecoder.Decode(mask)
}

// Bitfield is a 64-bit flags value that unmarshals from a JSON number or a
// quoted decimal string without passing through float64.
type Bitfield uint64

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bitfield) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBitfield, s)
	}
	*b = Bitfield(v)
	return nil
}

// Uint64 returns the raw mask, treating nil as zero.
func (b *Bitfield) Uint64() uint64 {
	if b == nil {
		return 0
	}
	return uint64(*b)
}
