package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
)

// Scraper is the last-resort media resolver: it pulls Open Graph tags
// from a post's HTML when the extraction engine cannot handle the
// platform or post type.
type Scraper struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a scraping fallback adapter.
func New(cfg config.ScrapeConfig, logger *slog.Logger) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// ScrapeMedia fetches a post page and returns metadata with at most
// one candidate: a direct video URL if the page advertises one, else
// an image URL. Fails with NotFound when neither is present.
func (s *Scraper) ScrapeMedia(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	title := metaContent(doc, "og:title")
	if title == "" {
		title = "Untitled"
	}
	thumbnail := metaContent(doc, "og:image")

	videoURL := metaContent(doc, "og:video")
	if videoURL == "" {
		// Some pages (LinkedIn in particular) skip og:video and embed
		// a bare <video> element instead.
		videoURL, _ = doc.Find("video[src]").First().Attr("src")
	}

	var candidate domain.MediaCandidate
	switch {
	case videoURL != "":
		candidate = domain.MediaCandidate{Quality: "original", Container: "mp4", SourceURL: videoURL}
	case thumbnail != "":
		candidate = domain.MediaCandidate{Quality: "original", Container: "jpg", SourceURL: thumbnail}
	default:
		return nil, domain.NewError(domain.KindNotFound, "no media found in post")
	}

	return &domain.MediaMetadata{
		Title:      title,
		Thumbnail:  thumbnail,
		Candidates: []domain.MediaCandidate{candidate},
	}, nil
}

// Fetch resolves a post's media via ScrapeMedia, then downloads the
// raw bytes of the resolved URL into dir under the base filename. The
// extension comes from the response content type.
func (s *Scraper) Fetch(ctx context.Context, url, dir, base string) (*domain.MaterializedFile, error) {
	meta, err := s.ScrapeMedia(ctx, url)
	if err != nil {
		return nil, err
	}
	mediaURL := meta.Candidates[0].SourceURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamFailure, "failed to fetch media", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"))
	path := filepath.Join(dir, base+"."+ext)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return nil, domain.WrapError(domain.KindUpstreamFailure, "failed to fetch media", err)
	}

	return &domain.MaterializedFile{
		Path:  path,
		Title: domain.SanitizeTitle(meta.Title),
	}, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamFailure, "failed to fetch page", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamFailure, "failed to parse page", err)
	}
	return doc, nil
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

// extensionFor sniffs the file extension from a response content type.
func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "video"):
		return "mp4"
	default:
		return "jpg"
	}
}

func classifyFetchError(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return domain.WrapError(domain.KindTimeout, "page fetch timed out, please retry", err)
	}
	return domain.WrapError(domain.KindUpstreamFailure, "failed to fetch page", err)
}

func statusError(code int) error {
	switch {
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return domain.NewError(domain.KindAccessDenied, "upstream blocked the request; the resolver may need updating")
	case code == http.StatusNotFound || code == http.StatusGone:
		return domain.NewError(domain.KindNotFound, "post not found")
	default:
		return domain.NewError(domain.KindUpstreamFailure, fmt.Sprintf("upstream returned status %d", code))
	}
}
