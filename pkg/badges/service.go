package badges

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"
)

var userIDPattern = regexp.MustCompile(`^\d+$`)

// ValidUserID reports whether id is a decimal snowflake.
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// UserSource fetches raw records from the upstream profile API.
type UserSource interface {
	// Configured reports whether the upstream credential is present.
	Configured() bool

	// GetUser fetches a user profile. Non-2xx responses are returned as *UpstreamError.
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetGuildMember fetches a guild membership. A user outside the guild yields ErrMemberNotFound.
	GetGuildMember(ctx context.Context, guildID, userID string) (*GuildMember, error)
}

// Notifier receives best-effort audit events after successful lookups.
type Notifier interface {
	Notify(ctx context.Context, event LookupEvent) error
}

// NoopNotifier discards every event.
type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ LookupEvent) error { return nil }

// Config configures a Service.
type Config struct {
	// Source is the upstream collaborator (required)
	Source UserSource

	// Notifier receives audit events (default: NoopNotifier)
	Notifier Notifier

	// GuildIDs are scanned in order for a subscription timestamp
	GuildIDs []string

	// GuildScanConcurrency bounds parallel guild lookups.
	// Values <= 1 scan sequentially and stop at the first hit.
	GuildScanConcurrency int

	// CDNBaseURL is used for avatar and banner URLs (default: DefaultCDNBaseURL)
	CDNBaseURL string

	// Flags decodes public_flags (default: DefaultFlagDecoder())
	Flags *FlagDecoder

	// NitroTiers is the tenure table for the nitro badge (default: NitroTiers)
	NitroTiers TierTable

	// BoostTiers is the tenure table for booster levels (default: BoostTiers)
	BoostTiers TierTable

	// Metrics is used for tracking lookups (default: NoopMetrics)
	Metrics Metrics

	// Logger is used for structured logging (default: NoopLogger)
	Logger Logger

	// Now returns the evaluation time (default: time.Now)
	Now func() time.Time
}

// Service fetches users and derives their badges, nitro tier and booster status.
type Service struct {
	config Config
}

// NewService creates a new lookup service with the given configuration
func NewService(config Config) (*Service, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("source is required")
	}

	// Set defaults
	if config.Notifier == nil {
		config.Notifier = &NoopNotifier{}
	}
	if config.CDNBaseURL == "" {
		config.CDNBaseURL = DefaultCDNBaseURL
	}
	if config.Flags == nil {
		config.Flags = DefaultFlagDecoder()
	}
	if config.NitroTiers == nil {
		config.NitroTiers = NitroTiers
	}
	if config.BoostTiers == nil {
		config.BoostTiers = BoostTiers
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	if err := config.NitroTiers.Validate(); err != nil {
		return nil, fmt.Errorf("nitro tiers: %w", err)
	}
	if err := config.BoostTiers.Validate(); err != nil {
		return nil, fmt.Errorf("boost tiers: %w", err)
	}
	for _, id := range config.GuildIDs {
		if !ValidUserID(id) {
			return nil, fmt.Errorf("invalid guild id %q", id)
		}
	}

	return &Service{config: config}, nil
}

// Lookup fetches the user identified by userID and derives its profile.
func (s *Service) Lookup(ctx context.Context, userID string) (*Profile, error) {
	start := time.Now()
	profile, err := s.lookup(ctx, userID)
	s.config.Metrics.RecordLookup(outcomeOf(err), time.Since(start))
	return profile, err
}

func (s *Service) lookup(ctx context.Context, userID string) (*Profile, error) {
	if !ValidUserID(userID) {
		return nil, ErrInvalidUserID
	}
	if !s.config.Source.Configured() {
		return nil, ErrNotConfigured
	}

	user, err := s.config.Source.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user.ID == "" {
		user.ID = userID
	}

	guildID, member, err := s.scanGuilds(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.config.Now().UTC()
	profile := s.derive(NewSnapshot(user, guildID, member), now)

	s.notify(ctx, LookupEvent{UserID: userID, Profile: profile, LookedUpAt: now})
	return profile, nil
}

// Derive computes a profile from a snapshot without any upstream calls.
func (s *Service) Derive(snap *UserSnapshot) *Profile {
	return s.derive(snap, s.config.Now().UTC())
}

func (s *Service) derive(snap *UserSnapshot, now time.Time) *Profile {
	flagLabels := s.config.Flags.DecodeNullable(snap.PublicFlags)

	tier := s.config.NitroTiers.Infer(TierInput{
		SubscriptionStart: snap.SubscriptionStart,
		Indicators:        snap.Indicators(),
	}, now)
	s.config.Metrics.RecordTierInference(tier.Method(), tierLabel(tier))

	nitro := NitroStatus{HasNitro: tier != nil, Tier: tier}
	if tier != nil && tier.ElapsedMonths != nil {
		nitro.NextMilestone = s.config.NitroTiers.NextMilestone(*tier.ElapsedMonths)
	}

	badges := Assemble(flagLabels, tier)

	var raw uint64
	if snap.PublicFlags != nil {
		raw = *snap.PublicFlags
	}

	return &Profile{
		ID:               snap.ID,
		Username:         snap.Username,
		Discriminator:    snap.Discriminator,
		GlobalName:       snap.GlobalName,
		Badges:           badges,
		BadgeCount:       len(badges),
		Nitro:            nitro,
		Booster:          s.boosterStatus(snap, now),
		AvatarURL:        AvatarURL(s.config.CDNBaseURL, snap.ID, snap.Avatar),
		BannerURL:        BannerURL(s.config.CDNBaseURL, snap.ID, snap.Banner),
		DefaultAvatarURL: DefaultAvatarURL(s.config.CDNBaseURL, snap.ID, snap.Discriminator),
		AccentColor:      snap.AccentColor,
		RawPublicFlags:   raw,
	}
}

func (s *Service) boosterStatus(snap *UserSnapshot, now time.Time) BoosterStatus {
	if snap.SubscriptionStart == nil || snap.BoostGuildID == "" {
		return BoosterStatus{}
	}
	since, err := ParseTimestamp(*snap.SubscriptionStart)
	if err != nil {
		return BoosterStatus{}
	}

	guildID := snap.BoostGuildID
	months := ElapsedMonths(since, now)
	status := BoosterStatus{
		IsBooster:      true,
		GuildID:        &guildID,
		PremiumSince:   snap.SubscriptionStart,
		MonthsBoosting: &months,
		NextLevel:      s.config.BoostTiers.NextMilestone(months),
	}
	level, ok := s.config.BoostTiers.Lookup(months)
	if !ok {
		level, ok = s.config.BoostTiers.Lowest()
	}
	if ok {
		status.Level = &level.Label
	}
	return status
}

// scanGuilds returns the first configured guild, in declaration order, whose
// membership carries a parseable premium_since. Guild lookup failures are
// logged and skipped.
func (s *Service) scanGuilds(ctx context.Context, userID string) (string, *GuildMember, error) {
	guilds := s.config.GuildIDs
	if len(guilds) == 0 {
		return "", nil, nil
	}
	if s.config.GuildScanConcurrency <= 1 {
		return s.scanGuildsSequential(ctx, guilds, userID)
	}
	return s.scanGuildsParallel(ctx, guilds, userID)
}

func (s *Service) scanGuildsSequential(ctx context.Context, guilds []string, userID string) (string, *GuildMember, error) {
	for i, guildID := range guilds {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if member := s.fetchBoostingMember(ctx, guildID, userID); member != nil {
			s.config.Metrics.RecordGuildScan(i+1, true)
			return guildID, member, nil
		}
	}
	s.config.Metrics.RecordGuildScan(len(guilds), false)
	return "", nil, nil
}

func (s *Service) scanGuildsParallel(ctx context.Context, guilds []string, userID string) (string, *GuildMember, error) {
	results := make([]*GuildMember, len(guilds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.GuildScanConcurrency)
	for i, guildID := range guilds {
		g.Go(func() error {
			results[i] = s.fetchBoostingMember(gctx, guildID, userID)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	for i, member := range results {
		if member != nil {
			s.config.Metrics.RecordGuildScan(len(guilds), true)
			return guilds[i], member, nil
		}
	}
	s.config.Metrics.RecordGuildScan(len(guilds), false)
	return "", nil, nil
}

// fetchBoostingMember returns the membership only if it has a usable premium_since.
func (s *Service) fetchBoostingMember(ctx context.Context, guildID, userID string) *GuildMember {
	member, err := s.config.Source.GetGuildMember(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			s.config.Logger.Debug("user is not a guild member",
				Field{"guild_id", guildID}, Field{"user_id", userID})
		} else {
			s.config.Logger.Warn("guild member lookup failed",
				Field{"guild_id", guildID}, Field{"user_id", userID}, Field{"error", err})
		}
		return nil
	}
	if member == nil || member.PremiumSince == nil {
		return nil
	}
	if _, err := ParseTimestamp(*member.PremiumSince); err != nil {
		s.config.Logger.Warn("ignoring unparseable premium_since",
			Field{"guild_id", guildID}, Field{"user_id", userID}, Field{"value", *member.PremiumSince})
		return nil
	}
	return member
}

func (s *Service) notify(ctx context.Context, event LookupEvent) {
	err := s.config.Notifier.Notify(ctx, event)
	s.config.Metrics.RecordNotification(err)
	if err != nil {
		s.config.Logger.Warn("lookup notification failed",
			Field{"user_id", event.UserID}, Field{"error", err})
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidUserID):
		return OutcomeInvalidID
	case errors.Is(err, ErrNotConfigured):
		return OutcomeNotConfigured
	case errors.Is(err, ErrUpstream):
		return OutcomeUpstreamError
	default:
		return OutcomeError
	}
}

func tierLabel(t *TierResult) string {
	if t == nil {
		return ""
	}
	return t.Tier
}
