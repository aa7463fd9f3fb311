package badges

import (
	"strings"
	"time"
)

// User is the subset of the Discord user object the service reads.
type User struct {
	ID                   string                `json:"id"`
	Username             string                `json:"username"`
	Discriminator        string                `json:"discriminator"`
	GlobalName           *string               `json:"global_name"`
	Avatar               *string               `json:"avatar"`
	Banner               *string               `json:"banner"`
	AccentColor          *int                  `json:"accent_color"`
	PublicFlags          *Bitfield             `json:"public_flags"`
	PremiumType          *int                  `json:"premium_type"`
	Bot                  bool                  `json:"bot"`
	AvatarDecoration     *string               `json:"avatar_decoration"`
	AvatarDecorationData *AvatarDecorationData `json:"avatar_decoration_data"`
}

// AvatarDecorationData describes an avatar decoration asset.
type AvatarDecorationData struct {
	Asset string `json:"asset"`
	SKUID string `json:"sku_id"`
}

// GuildMember is the subset of the Discord guild member object the service reads.
type GuildMember struct {
	Nick         *string `json:"nick"`
	JoinedAt     string  `json:"joined_at"`
	PremiumSince *string `json:"premium_since"`
	Pending      bool    `json:"pending"`
}

// UserSnapshot is the per-request view assembled from upstream responses.
type UserSnapshot struct {
	ID                string
	Username          string
	Discriminator     string
	GlobalName        *string
	PublicFlags       *uint64
	Avatar            *string
	Banner            *string
	AccentColor       *int
	PremiumType       *int
	HasDecoration     bool
	SubscriptionStart *string
	BoostGuildID      string
}

// NewSnapshot builds a snapshot from a user record and, optionally, the guild
// membership that supplied a subscription timestamp.
func NewSnapshot(u *User, guildID string, member *GuildMember) *UserSnapshot {
	s := &UserSnapshot{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		GlobalName:    u.GlobalName,
		Avatar:        nonEmpty(u.Avatar),
		Banner:        nonEmpty(u.Banner),
		AccentColor:   u.AccentColor,
		PremiumType:   u.PremiumType,
		HasDecoration: u.AvatarDecorationData != nil || nonEmpty(u.AvatarDecoration) != nil,
	}
	if u.PublicFlags != nil {
		mask := u.PublicFlags.Uint64()
		s.PublicFlags = &mask
	}
	if member != nil && member.PremiumSince != nil {
		s.SubscriptionStart = member.PremiumSince
		s.BoostGuildID = guildID
	}
	return s
}

// Indicators extracts the indirect subscription signals.
func (s *UserSnapshot) Indicators() Indicators {
	ind := Indicators{
		AnimatedAvatar: s.Avatar != nil && isAnimated(*s.Avatar),
		Banner:         s.Banner != nil,
		Decoration:     s.HasDecoration,
	}
	if s.PremiumType != nil {
		ind.PremiumType = *s.PremiumType
	}
	return ind
}

// NitroStatus is the tier view of a profile.
type NitroStatus struct {
	HasNitro      bool        `json:"has_nitro"`
	Tier          *TierResult `json:"tier"`
	NextMilestone *Milestone  `json:"next_milestone"`
}

// BoosterStatus is the server boost view of a profile.
type BoosterStatus struct {
	IsBooster      bool       `json:"is_booster"`
	GuildID        *string    `json:"guild_id"`
	PremiumSince   *string    `json:"premium_since"`
	MonthsBoosting *int       `json:"months_boosting"`
	Level          *string    `json:"level"`
	NextLevel      *Milestone `json:"next_level"`
}

// Profile is the derived response for one user.
type Profile struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	Discriminator    string        `json:"discriminator"`
	GlobalName       *string       `json:"global_name"`
	Badges           []string      `json:"badges"`
	BadgeCount       int           `json:"badge_count"`
	Nitro            NitroStatus   `json:"nitro"`
	Booster          BoosterStatus `json:"booster"`
	AvatarURL        *string       `json:"avatar_url"`
	BannerURL        *string       `json:"banner_url"`
	DefaultAvatarURL string        `json:"default_avatar_url"`
	AccentColor      *int          `json:"accent_color"`
	RawPublicFlags   uint64        `json:"raw_public_flags"`
}

// LookupEvent is handed to a Notifier after a successful lookup.
type LookupEvent struct {
	UserID     string
	Profile    *Profile
	LookedUpAt time.Time
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
