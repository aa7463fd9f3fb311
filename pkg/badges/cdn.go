package badges

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCDNBaseURL is the Discord media host.
const DefaultCDNBaseURL = "https://cdn.discordapp.com"

const animatedHashPrefix = "a_"

func isAnimated(hash string) bool {
	return strings.HasPrefix(hash, animatedHashPrefix)
}

func assetExt(hash string) string {
	if isAnimated(hash) {
		return "gif"
	}
	return "png"
}

// AvatarURL returns the CDN URL of a custom avatar, or nil when there is none.
func AvatarURL(base, userID string, hash *string) *string {
	return assetURL(base, "avatars", userID, hash)
}

// BannerURL returns the CDN URL of a profile banner, or nil when there is none.
func BannerURL(base, userID string, hash *string) *string {
	return assetURL(base, "banners", userID, hash)
}

func assetURL(base, kind, userID string, hash *string) *string {
	if hash == nil || *hash == "" {
		return nil
	}
	u := fmt.Sprintf("%s/%s/%s/%s.%s", strings.TrimRight(base, "/"), kind, userID, *hash, assetExt(*hash))
	return &u
}

// DefaultAvatarURL returns the embed avatar Discord shows when no custom avatar is set.
// Migrated usernames (discriminator "0") use (id >> 22) % 6, legacy ones discriminator % 5.
func DefaultAvatarURL(base, userID, discriminator string) string {
	index := 0
	if discriminator == "" || discriminator == "0" {
		if id, err := strconv.ParseUint(userID, 10, 64); err == nil {
			index = int((id >> 22) % 6)
		}
	} else if d, err := strconv.Atoi(discriminator); err == nil {
		index = d % 5
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", strings.TrimRight(base, "/"), index)
}
