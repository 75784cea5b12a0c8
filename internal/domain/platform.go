package domain

import "strings"

// PlatformTag identifies which social platform a URL belongs to.
type PlatformTag string

// Supported platforms.
const (
	PlatformYouTube   PlatformTag = "youtube"
	PlatformTikTok    PlatformTag = "tiktok"
	PlatformInstagram PlatformTag = "instagram"
	PlatformFacebook  PlatformTag = "facebook"
	PlatformTwitter   PlatformTag = "twitter"
	PlatformLinkedIn  PlatformTag = "linkedin"
	PlatformUnknown   PlatformTag = "unknown"
)

// platformMarkers maps hostname markers to platform tags.
// Evaluated in order; first match wins.
var platformMarkers = []struct {
	tag     PlatformTag
	markers []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformFacebook, []string{"facebook.com", "fb.watch"}},
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformLinkedIn, []string{"linkedin.com"}},
}

// Classify determines the platform for a URL by case-insensitive
// substring match. It never fails; unrecognized URLs map to
// PlatformUnknown.
func Classify(url string) PlatformTag {
	lower := strings.ToLower(url)
	for _, p := range platformMarkers {
		for _, m := range p.markers {
			if strings.Contains(lower, m) {
				return p.tag
			}
		}
	}
	return PlatformUnknown
}

// SupportedPlatforms returns display names for the service descriptor.
func SupportedPlatforms() []string {
	return []string{"YouTube", "TikTok", "Instagram", "Facebook", "Twitter", "LinkedIn"}
}
