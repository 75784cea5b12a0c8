package domain

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want PlatformTag
	}{
		{
			name: "youtube watch URL",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: PlatformYouTube,
		},
		{
			name: "youtube short link",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: PlatformYouTube,
		},
		{
			name: "youtube uppercase host",
			url:  "https://WWW.YOUTUBE.COM/watch?v=abc",
			want: PlatformYouTube,
		},
		{
			name: "tiktok video",
			url:  "https://www.tiktok.com/@user/video/1234567890",
			want: PlatformTikTok,
		},
		{
			name: "instagram reel",
			url:  "https://www.instagram.com/reel/Cxyz/",
			want: PlatformInstagram,
		},
		{
			name: "facebook video",
			url:  "https://www.facebook.com/watch/?v=123",
			want: PlatformFacebook,
		},
		{
			name: "facebook short link",
			url:  "https://fb.watch/abc123/",
			want: PlatformFacebook,
		},
		{
			name: "twitter status",
			url:  "https://twitter.com/user/status/123",
			want: PlatformTwitter,
		},
		{
			name: "x.com status",
			url:  "https://x.com/user/status/123",
			want: PlatformTwitter,
		},
		{
			name: "linkedin post",
			url:  "https://www.linkedin.com/posts/user_activity-123",
			want: PlatformLinkedIn,
		},
		{
			name: "unrelated site",
			url:  "https://example.com/video",
			want: PlatformUnknown,
		},
		{
			name: "empty string",
			url:  "",
			want: PlatformUnknown,
		},
		{
			name: "not a URL at all",
			url:  "hello world",
			want: PlatformUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSupportedPlatforms(t *testing.T) {
	platforms := SupportedPlatforms()
	if len(platforms) != 6 {
		t.Errorf("expected 6 supported platforms, got %d", len(platforms))
	}
}
