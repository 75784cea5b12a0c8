package handler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/resolver"
	"github.com/iconidentify/mediagrab/internal/session"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEngine is a test implementation of resolver.Engine.
type fakeEngine struct {
	meta       *domain.MediaMetadata
	extractErr error

	// materialize, when set, runs inside the workspace; otherwise a
	// small mp4 file is written.
	materialize    func(dir, base string) (*domain.MaterializedFile, error)
	materializeErr error
	gotFormatID    string
}

func (f *fakeEngine) Extract(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.meta, nil
}

func (f *fakeEngine) Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error) {
	f.gotFormatID = formatID
	if f.materializeErr != nil {
		return nil, f.materializeErr
	}
	if f.materialize != nil {
		return f.materialize(dir, base)
	}
	path := filepath.Join(dir, base+".mp4")
	if err := os.WriteFile(path, []byte("test video bytes"), 0o644); err != nil {
		return nil, err
	}
	return &domain.MaterializedFile{Path: path, Title: "Engine Clip"}, nil
}

// fakeScraper is a test implementation of resolver.Scraper.
type fakeScraper struct {
	meta      *domain.MediaMetadata
	scrapeErr error
	fetchErr  error
}

func (f *fakeScraper) ScrapeMedia(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	return f.meta, nil
}

func (f *fakeScraper) Fetch(ctx context.Context, url, dir, base string) (*domain.MaterializedFile, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	path := filepath.Join(dir, base+".jpg")
	if err := os.WriteFile(path, []byte("image bytes"), 0o644); err != nil {
		return nil, err
	}
	return &domain.MaterializedFile{Path: path, Title: "Scraped Photo"}, nil
}

// newTestMediaHandler wires real resolver and session manager over the
// fakes, mirroring production wiring.
func newTestMediaHandler(t *testing.T, eng *fakeEngine, scr *fakeScraper) (*MediaHandler, string) {
	t.Helper()
	tempRoot := t.TempDir()
	res := resolver.New(eng, scr, testLogger())
	sessions := session.NewManager(res, tempRoot, testLogger())
	return NewMediaHandler(res, sessions, nil, testLogger()), tempRoot
}
