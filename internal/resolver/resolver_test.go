package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/iconidentify/mediagrab/internal/domain"
)

type fakeEngine struct {
	meta     *domain.MediaMetadata
	mf       *domain.MaterializedFile
	err      error
	extracts int
	fetches  int
}

func (f *fakeEngine) Extract(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	f.extracts++
	return f.meta, f.err
}

func (f *fakeEngine) Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error) {
	f.fetches++
	return f.mf, f.err
}

type fakeScraper struct {
	meta    *domain.MediaMetadata
	mf      *domain.MaterializedFile
	err     error
	scrapes int
	fetches int
}

func (f *fakeScraper) ScrapeMedia(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	f.scrapes++
	return f.meta, f.err
}

func (f *fakeScraper) Fetch(ctx context.Context, url, dir, base string) (*domain.MaterializedFile, error) {
	f.fetches++
	return f.mf, f.err
}

func testResolver(e Engine, s Scraper) *Resolver {
	return New(e, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMetadata_UnknownPlatformRejectedBeforeAdapters(t *testing.T) {
	eng := &fakeEngine{}
	scr := &fakeScraper{}
	r := testResolver(eng, scr)

	_, err := r.Metadata(context.Background(), "https://example.com/video")
	if kind := domain.KindOf(err); kind != domain.KindUnsupportedPlatform {
		t.Fatalf("error kind = %q, want unsupported_platform", kind)
	}
	if eng.extracts != 0 || scr.scrapes != 0 {
		t.Error("adapters must not be invoked for unknown platforms")
	}
}

func TestMetadata_EngineNativePlatform(t *testing.T) {
	eng := &fakeEngine{meta: &domain.MediaMetadata{Title: "yt"}}
	scr := &fakeScraper{}
	r := testResolver(eng, scr)

	meta, err := r.Metadata(context.Background(), "https://youtube.com/watch?v=1")
	if err != nil {
		t.Fatalf("Metadata() failed: %v", err)
	}
	if meta.Platform != domain.PlatformYouTube {
		t.Errorf("platform = %q", meta.Platform)
	}
	if scr.scrapes != 0 {
		t.Error("scraper must not run for engine-native platforms")
	}
}

func TestMetadata_EngineNativeFailurePropagates(t *testing.T) {
	eng := &fakeEngine{err: domain.NewError(domain.KindAccessDenied, "blocked")}
	scr := &fakeScraper{meta: &domain.MediaMetadata{}}
	r := testResolver(eng, scr)

	_, err := r.Metadata(context.Background(), "https://tiktok.com/@u/video/1")
	if kind := domain.KindOf(err); kind != domain.KindAccessDenied {
		t.Fatalf("error kind = %q, want access_denied", kind)
	}
	if scr.scrapes != 0 {
		t.Error("no scrape fallback for engine-native platforms")
	}
}

func TestMetadata_InstagramFallsBackToScrape(t *testing.T) {
	eng := &fakeEngine{err: errors.New("engine exploded")}
	scr := &fakeScraper{meta: &domain.MediaMetadata{
		Title: "IG Post",
		Candidates: []domain.MediaCandidate{
			{Quality: "original", Container: "jpg", SourceURL: "https://cdn.example/p.jpg"},
		},
	}}
	r := testResolver(eng, scr)

	meta, err := r.Metadata(context.Background(), "https://instagram.com/p/abc/")
	if err != nil {
		t.Fatalf("Metadata() failed: %v", err)
	}
	if eng.extracts != 1 || scr.scrapes != 1 {
		t.Errorf("call counts: engine=%d scraper=%d", eng.extracts, scr.scrapes)
	}
	if meta.Platform != domain.PlatformInstagram {
		t.Errorf("platform = %q", meta.Platform)
	}
	if meta.Candidates[0].Container != "jpg" {
		t.Errorf("candidate = %+v", meta.Candidates[0])
	}
}

func TestMetadata_LinkedInScrapeOnly(t *testing.T) {
	eng := &fakeEngine{}
	scr := &fakeScraper{meta: &domain.MediaMetadata{Title: "LI"}}
	r := testResolver(eng, scr)

	meta, err := r.Metadata(context.Background(), "https://linkedin.com/posts/u_x-123")
	if err != nil {
		t.Fatalf("Metadata() failed: %v", err)
	}
	if eng.extracts != 0 {
		t.Error("engine must not run for linkedin")
	}
	if meta.Platform != domain.PlatformLinkedIn {
		t.Errorf("platform = %q", meta.Platform)
	}
}

func TestMetadata_LinkedInNoMedia(t *testing.T) {
	scr := &fakeScraper{err: domain.NewError(domain.KindNotFound, "no media found in post")}
	r := testResolver(&fakeEngine{}, scr)

	_, err := r.Metadata(context.Background(), "https://linkedin.com/posts/u_x-123")
	if kind := domain.KindOf(err); kind != domain.KindNotFound {
		t.Errorf("error kind = %q, want not_found", kind)
	}
}

func TestMaterialize_InstagramFallsBackToFetch(t *testing.T) {
	eng := &fakeEngine{err: errors.New("declined")}
	scr := &fakeScraper{mf: &domain.MaterializedFile{Path: "/ws/media.jpg", Title: "IG"}}
	r := testResolver(eng, scr)

	mf, err := r.Materialize(context.Background(), "https://instagram.com/p/abc/", "", "/ws", "media")
	if err != nil {
		t.Fatalf("Materialize() failed: %v", err)
	}
	if eng.fetches != 1 || scr.fetches != 1 {
		t.Errorf("call counts: engine=%d scraper=%d", eng.fetches, scr.fetches)
	}
	if mf.Path != "/ws/media.jpg" {
		t.Errorf("path = %q", mf.Path)
	}
}

func TestMaterialize_UnknownPlatform(t *testing.T) {
	eng := &fakeEngine{}
	scr := &fakeScraper{}
	r := testResolver(eng, scr)

	_, err := r.Materialize(context.Background(), "https://random.site/v", "", "/ws", "media")
	if kind := domain.KindOf(err); kind != domain.KindUnsupportedPlatform {
		t.Fatalf("error kind = %q", kind)
	}
	if eng.fetches != 0 && scr.fetches != 0 {
		t.Error("adapters must not be invoked")
	}
}
