package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
)

// bestFormat asks for the best video+audio pair in a widely-compatible
// container, falling back to the best available single stream.
const bestFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best"

// Adapter wraps the yt-dlp binary. It translates neutral extraction
// requests into engine flags and engine failures into classified
// domain errors.
type Adapter struct {
	cfg    config.EngineConfig
	logger *slog.Logger
}

// New creates an extraction engine adapter.
func New(cfg config.EngineConfig, logger *slog.Logger) *Adapter {
	return &Adapter{cfg: cfg, logger: logger}
}

// ytdlpInfo mirrors the slice of yt-dlp -J output this service consumes.
type ytdlpInfo struct {
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Duration  float64       `json:"duration"`
	Uploader  string        `json:"uploader"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID   string  `json:"format_id"`
	FormatNote string  `json:"format_note"`
	Ext        string  `json:"ext"`
	Filesize   int64   `json:"filesize"`
	URL        string  `json:"url"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	VCodec     string  `json:"vcodec"`
}

// baseArgs returns the flags common to every engine invocation:
// browser-like identity, relaxed certificate checks, and bounded
// retries for transient socket/fragment/extractor failures.
func (a *Adapter) baseArgs() []string {
	retries := strconv.Itoa(a.cfg.Retries)
	return []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--no-check-certificates",
		"--socket-timeout", strconv.Itoa(int(a.cfg.SocketTimeout.Seconds())),
		"--retries", retries,
		"--fragment-retries", retries,
		"--extractor-retries", retries,
		"--user-agent", a.cfg.UserAgent,
		"--referer", a.cfg.Referer,
		"--extractor-args", "youtube:player_client=" + a.cfg.PlayerClients,
	}
}

// Extract resolves metadata for a URL without writing anything to disk.
// Candidates are filtered to video-capable streams, ranked by height,
// and capped.
func (a *Adapter) Extract(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ExtractTimeout)
	defer cancel()

	args := append(a.baseArgs(), "--dump-single-json", "--skip-download", url)
	stdout, err := a.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, domain.WrapError(domain.KindUpstreamFailure, "failed to parse engine output", err)
	}

	return buildMetadata(&info), nil
}

func buildMetadata(info *ytdlpInfo) *domain.MediaMetadata {
	var candidates []domain.MediaCandidate
	for _, f := range info.Formats {
		// Skip audio-only streams
		if f.VCodec == "none" {
			continue
		}
		quality := f.FormatNote
		if quality == "" && f.Height > 0 {
			quality = fmt.Sprintf("%dp", f.Height)
		}
		if quality == "" {
			quality = "unknown"
		}
		candidates = append(candidates, domain.MediaCandidate{
			FormatID:  f.FormatID,
			Quality:   quality,
			Container: f.Ext,
			SizeBytes: f.Filesize,
			SourceURL: f.URL,
			Height:    f.Height,
			Width:     f.Width,
			FrameRate: f.FPS,
		})
	}

	title := info.Title
	if title == "" {
		title = "Untitled"
	}

	return &domain.MediaMetadata{
		Title:      title,
		Thumbnail:  info.Thumbnail,
		Duration:   info.Duration,
		Author:     info.Uploader,
		Candidates: domain.RankCandidates(candidates),
	}
}

// Materialize downloads a URL into dir under the given base filename.
// The engine picks the final extension and, when separate video and
// audio streams are selected, remuxes them into a single mp4. The
// returned path is the engine's own report of where the file landed;
// callers fall back to a prefix scan when it is empty.
func (a *Adapter) Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	args := a.baseArgs()
	if formatID != "" {
		args = append(args, "-f", formatID)
	} else {
		args = append(args, "-f", bestFormat, "--merge-output-format", "mp4")
	}
	args = append(args,
		"-o", filepath.Join(dir, base+".%(ext)s"),
		"--no-simulate",
		// One tab-delimited line per download: title, then final path.
		"--print", "after_move:%(title)s\t%(filepath)s",
		url,
	)

	stdout, err := a.run(ctx, args)
	if err != nil {
		return nil, err
	}

	title, path := parseMaterializeOutput(string(stdout))
	return &domain.MaterializedFile{
		Path:  path,
		Title: domain.SanitizeTitle(title),
	}, nil
}

// parseMaterializeOutput picks the last populated line of the print
// output and splits it into title and resolved path. The path is the
// last print field, so the split is on the last tab: a tab inside the
// title must not corrupt the path. Either half may come back empty;
// the session manager treats both as optional.
func parseMaterializeOutput(out string) (title, path string) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if tab := strings.LastIndexByte(line, '\t'); tab >= 0 {
			return line[:tab], line[tab+1:]
		}
		return "", line
	}
	return "", ""
}

// Version reports the engine binary version. Used by the health probe
// as a trivial initialization check.
func (a *Adapter) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, a.cfg.BinaryPath, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("engine version check: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// run executes the engine binary and classifies any failure.
func (a *Adapter) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.cfg.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, domain.WrapError(domain.KindTimeout, "extraction timed out, please retry", err)
	}

	msg := stderr.String()
	a.logger.Warn("engine invocation failed", "error", err, "stderr", msg)

	kind := ClassifyMessage(msg)
	return nil, domain.WrapError(kind, clientMessageFor(kind), fmt.Errorf("%s: %w", strings.TrimSpace(msg), err))
}

func clientMessageFor(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindAccessDenied:
		return "upstream blocked the request; the resolver may need updating"
	case domain.KindNotFound:
		return "media not found or no longer available"
	case domain.KindTimeout:
		return "extraction timed out, please retry"
	default:
		return "failed to extract media info"
	}
}
