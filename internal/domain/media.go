package domain

import (
	"regexp"
	"sort"
	"strings"
)

// MaxCandidates caps the number of format candidates returned for a
// single media item.
const MaxCandidates = 10

// MediaCandidate is one downloadable variant of a media item.
// Immutable once produced by an adapter.
type MediaCandidate struct {
	FormatID  string  `json:"format_id,omitempty"`
	Quality   string  `json:"quality"`
	Container string  `json:"ext"`
	SizeBytes int64   `json:"filesize,omitempty"`
	SourceURL string  `json:"url,omitempty"`
	Height    int     `json:"height,omitempty"`
	Width     int     `json:"width,omitempty"`
	FrameRate float64 `json:"fps,omitempty"`
}

// MediaMetadata is the aggregate returned by the extract endpoint.
type MediaMetadata struct {
	Platform   PlatformTag      `json:"platform"`
	Title      string           `json:"title"`
	Thumbnail  string           `json:"thumbnail"`
	Duration   float64          `json:"duration,omitempty"`
	Author     string           `json:"author,omitempty"`
	Candidates []MediaCandidate `json:"formats"`
}

// MaterializedFile describes a file an adapter wrote into a workspace.
type MaterializedFile struct {
	// Path is the adapter-resolved output path. May be empty, in which
	// case the session manager locates the file by prefix scan.
	Path string

	// Title is the sanitized media title, used for response filenames.
	Title string
}

// RankCandidates returns candidates sorted by descending height, with
// items lacking height data last (treated as height 0). The sort is
// stable so equal heights keep discovery order. The result is capped
// at MaxCandidates.
func RankCandidates(candidates []MediaCandidate) []MediaCandidate {
	ranked := make([]MediaCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Height > ranked[j].Height
	})

	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}
	return ranked
}

// FallbackTitle is used when a media item carries no usable title.
const FallbackTitle = "downloaded_media"

var unsafeTitleChars = regexp.MustCompile(`[^0-9A-Za-z _-]+`)

// SanitizeTitle reduces a title to a filesystem-safe string: only
// alphanumerics, spaces, hyphens, and underscores survive, surrounding
// whitespace is trimmed. An empty result falls back to FallbackTitle.
func SanitizeTitle(title string) string {
	clean := strings.TrimSpace(unsafeTitleChars.ReplaceAllString(title, ""))
	if clean == "" {
		return FallbackTitle
	}
	return clean
}
