package engine

import (
	"testing"

	"github.com/iconidentify/mediagrab/internal/domain"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want domain.ErrorKind
	}{
		{
			name: "http 403",
			msg:  "ERROR: unable to download video data: HTTP Error 403: Forbidden",
			want: domain.KindAccessDenied,
		},
		{
			name: "login required",
			msg:  "ERROR: [Instagram] Login required to access this content",
			want: domain.KindAccessDenied,
		},
		{
			name: "bot check",
			msg:  "Sign in to confirm you're not a bot",
			want: domain.KindAccessDenied,
		},
		{
			name: "private video",
			msg:  "ERROR: Private video",
			want: domain.KindAccessDenied,
		},
		{
			name: "video unavailable",
			msg:  "ERROR: Video unavailable",
			want: domain.KindNotFound,
		},
		{
			name: "http 404",
			msg:  "ERROR: HTTP Error 404: Not Found",
			want: domain.KindNotFound,
		},
		{
			name: "unsupported url",
			msg:  "ERROR: Unsupported URL: https://example.com/clip",
			want: domain.KindNotFound,
		},
		{
			name: "socket timeout",
			msg:  "ERROR: The read operation timed out",
			want: domain.KindTimeout,
		},
		{
			name: "generic failure",
			msg:  "ERROR: unable to extract player response",
			want: domain.KindUpstreamFailure,
		},
		{
			name: "empty message",
			msg:  "",
			want: domain.KindUpstreamFailure,
		},
		{
			name: "case insensitive",
			msg:  "http error 403: FORBIDDEN",
			want: domain.KindAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMessage(tt.msg); got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyMessage_TimeoutBeatsAccessDenied(t *testing.T) {
	// A timed-out 403 retry is still a timeout: the caller should retry
	// rather than give up.
	msg := "HTTP Error 403 retry timed out"
	if got := ClassifyMessage(msg); got != domain.KindTimeout {
		t.Errorf("ClassifyMessage(%q) = %q, want timeout", msg, got)
	}
}
