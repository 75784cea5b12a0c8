package resolver

import (
	"context"
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// Engine is the primary extraction adapter the resolver drives.
type Engine interface {
	Extract(ctx context.Context, url string) (*domain.MediaMetadata, error)
	Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error)
}

// Scraper is the HTML fallback adapter.
type Scraper interface {
	ScrapeMedia(ctx context.Context, url string) (*domain.MediaMetadata, error)
	Fetch(ctx context.Context, url, dir, base string) (*domain.MaterializedFile, error)
}

// Resolver dispatches per platform: engine-native platforms go straight
// to the extraction engine, LinkedIn is scrape-only, and Instagram
// falls back to scraping when the engine declines. Engine-first
// ordering is deliberate: the engine handles authentication and
// signature quirks the scraper cannot, while scraping breaks whenever
// the markup shifts.
type Resolver struct {
	engine  Engine
	scraper Scraper
	logger  *slog.Logger
}

// New creates a resolver over the two adapters.
func New(engine Engine, scraper Scraper, logger *slog.Logger) *Resolver {
	return &Resolver{engine: engine, scraper: scraper, logger: logger}
}

// Metadata resolves the ranked candidate list for a URL.
func (r *Resolver) Metadata(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	platform := domain.Classify(url)

	var meta *domain.MediaMetadata
	var err error

	switch platform {
	case domain.PlatformUnknown:
		return nil, domain.NewError(domain.KindUnsupportedPlatform, "unsupported platform")

	case domain.PlatformLinkedIn:
		meta, err = r.scraper.ScrapeMedia(ctx, url)

	case domain.PlatformInstagram:
		meta, err = r.engine.Extract(ctx, url)
		if err != nil {
			r.logger.Debug("engine failed for instagram, trying scrape fallback",
				"url", url, "error", err)
			meta, err = r.scraper.ScrapeMedia(ctx, url)
		}

	default:
		// Engine-native platforms: failures propagate as-is.
		meta, err = r.engine.Extract(ctx, url)
	}

	if err != nil {
		return nil, err
	}
	meta.Platform = platform
	return meta, nil
}

// Materialize drives the chosen adapter chain to write one media file
// into dir under the base filename.
func (r *Resolver) Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error) {
	platform := domain.Classify(url)

	switch platform {
	case domain.PlatformUnknown:
		return nil, domain.NewError(domain.KindUnsupportedPlatform, "unsupported platform")

	case domain.PlatformLinkedIn:
		return r.scraper.Fetch(ctx, url, dir, base)

	case domain.PlatformInstagram:
		mf, err := r.engine.Materialize(ctx, url, formatID, dir, base)
		if err != nil {
			r.logger.Debug("engine failed for instagram, trying direct fetch",
				"url", url, "error", err)
			return r.scraper.Fetch(ctx, url, dir, base)
		}
		return mf, nil

	default:
		return r.engine.Materialize(ctx, url, formatID, dir, base)
	}
}
