package engine

import (
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// The engine exposes no structured error taxonomy, only message text.
// All message sniffing is isolated here so the fragility lives in one
// independently tested function.
//
// Classification table, first match wins:
//
//	timed out, timeout, deadline          -> Timeout
//	403, forbidden, blocked, login
//	required, rate-limit, not a bot,
//	private, sign in, account             -> AccessDenied
//	404, not found, unavailable, does
//	not exist, removed, invalid url,
//	unsupported url, no video             -> NotFound
//	anything else                         -> UpstreamFailure
var classifyTable = []struct {
	kind    domain.ErrorKind
	markers []string
}{
	{domain.KindTimeout, []string{
		"timed out", "timeout", "deadline exceeded",
	}},
	{domain.KindAccessDenied, []string{
		"403", "forbidden", "blocked", "login required", "rate-limit",
		"rate limit", "not a bot", "private", "sign in", "account",
	}},
	{domain.KindNotFound, []string{
		"404", "not found", "unavailable", "does not exist", "removed",
		"invalid url", "unsupported url", "no video",
	}},
}

// ClassifyMessage maps a raw engine error message to an ErrorKind.
func ClassifyMessage(msg string) domain.ErrorKind {
	lower := strings.ToLower(msg)
	for _, row := range classifyTable {
		for _, marker := range row.markers {
			if strings.Contains(lower, marker) {
				return row.kind
			}
		}
	}
	return domain.KindUpstreamFailure
}
