package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// baseFilename is the fixed extensionless name adapters write under;
// the engine or fallback chooses the real extension after the fact.
const baseFilename = "media"

// chunkSize is the streaming write granularity.
const chunkSize = 8 * 1024

// MediaKind selects default extension and MIME type when a file
// carries no usable extension.
type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaPhoto
)

// Stage is a point in the download state machine. Emitted through the
// per-request progress callback.
type Stage string

const (
	StageCreated       Stage = "created"
	StageMaterializing Stage = "materializing"
	StageLocated       Stage = "located"
	StageStreaming     Stage = "streaming"
	StageCompleted     Stage = "completed"
	StageFailed        Stage = "failed"
)

// ProgressFunc receives state transitions for a single request. Never
// shared across requests.
type ProgressFunc func(Stage)

// Resolver materializes media for the session manager.
type Resolver interface {
	Materialize(ctx context.Context, url, formatID, dir, base string) (*domain.MaterializedFile, error)
}

// Manager owns download workspaces: one uniquely-named directory per
// request, deleted unconditionally when the request concludes.
type Manager struct {
	resolver Resolver
	tempRoot string
	logger   *slog.Logger
}

// NewManager creates a download session manager rooted at tempRoot.
func NewManager(resolver Resolver, tempRoot string, logger *slog.Logger) *Manager {
	return &Manager{resolver: resolver, tempRoot: tempRoot, logger: logger}
}

// Session is one in-flight download: a located, non-empty media file
// inside a workspace that outlives nothing. Callers must Close it on
// every path once Open succeeds.
type Session struct {
	ws   *workspace
	path string
	// file is held open from Open on, so streaming never depends on
	// the path still resolving and Stream can only fail once the
	// response has started.
	file     *os.File
	title    string
	ext      string
	size     int64
	kind     MediaKind
	progress ProgressFunc
	logger   *slog.Logger
}

// Open allocates a workspace, materializes the media, then locates and
// opens the produced file. On any failure the workspace is already
// cleaned up when Open returns.
func (m *Manager) Open(ctx context.Context, url, formatID string, kind MediaKind, progress ProgressFunc) (*Session, error) {
	if progress == nil {
		progress = func(Stage) {}
	}

	ws, err := m.newWorkspace()
	if err != nil {
		return nil, fmt.Errorf("allocate workspace: %w", err)
	}
	progress(StageCreated)

	progress(StageMaterializing)
	mf, err := m.resolver.Materialize(ctx, url, formatID, ws.dir, baseFilename)
	if err != nil {
		progress(StageFailed)
		ws.cleanup()
		return nil, err
	}

	path, size, err := locate(ws.dir, mf.Path)
	if err != nil {
		progress(StageFailed)
		ws.cleanup()
		return nil, err
	}
	progress(StageLocated)

	f, err := os.Open(path)
	if err != nil {
		progress(StageFailed)
		ws.cleanup()
		return nil, fmt.Errorf("open media file: %w", err)
	}

	title := mf.Title
	if title == "" {
		title = domain.FallbackTitle
	}

	return &Session{
		ws:       ws,
		path:     path,
		file:     f,
		title:    title,
		ext:      inferExtension(path, kind),
		size:     size,
		kind:     kind,
		progress: progress,
		logger:   m.logger,
	}, nil
}

// Filename is the attachment name: sanitized title plus inferred
// extension.
func (s *Session) Filename() string {
	return s.title + "." + s.ext
}

// ContentType maps the inferred extension to a MIME type.
func (s *Session) ContentType() string {
	return contentTypeFor(s.ext, s.kind)
}

// Size is the exact byte length of the located file.
func (s *Session) Size() int64 {
	return s.size
}

// Stream writes the file to the response in fixed-size chunks,
// flushing between chunks so a slow client never holds buffered state.
// It stops early when the caller disconnects; cleanup is Close's job,
// not conditioned on stream completion. Errors surface only after the
// headers are written.
func (s *Session) Stream(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", s.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(s.size, 10))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Filename()))
	s.progress(StageStreaming)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			s.progress(StageFailed)
			return ctx.Err()
		default:
		}

		n, rerr := s.file.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Client went away mid-stream.
				s.progress(StageFailed)
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			s.progress(StageFailed)
			return fmt.Errorf("read media file: %w", rerr)
		}
	}

	s.progress(StageCompleted)
	return nil
}

// Close releases the file and deletes the workspace. Safe to call
// more than once.
func (s *Session) Close() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.ws.cleanup()
}

// workspace is a request-scoped temporary directory.
type workspace struct {
	dir    string
	logger *slog.Logger
}

func (m *Manager) newWorkspace() (*workspace, error) {
	if err := os.MkdirAll(m.tempRoot, 0o755); err != nil {
		return nil, err
	}
	// uuid names keep concurrent sessions collision-free without locks
	dir := filepath.Join(m.tempRoot, "dl-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, err
	}
	return &workspace{dir: dir, logger: m.logger}, nil
}

// cleanup removes the workspace and everything in it. Idempotent:
// an already-deleted workspace is not an error, and deletion failures
// are logged rather than raised so they can never fail a response.
func (w *workspace) cleanup() {
	err := os.RemoveAll(w.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Error("workspace cleanup failed", "dir", w.dir, "error", err)
	}
}

// locate finds the materialized file. The adapter-resolved path is
// trusted when present; otherwise the workspace is scanned for the
// base-filename prefix. A missing or zero-length file is EmptyResult.
func locate(dir, resolvedPath string) (string, int64, error) {
	if resolvedPath != "" {
		if fi, err := os.Stat(resolvedPath); err == nil && !fi.IsDir() {
			if fi.Size() == 0 {
				return "", 0, domain.NewError(domain.KindEmptyResult, "materialized file is empty")
			}
			return resolvedPath, fi.Size(), nil
		}
		// Stale or wrong report; fall through to the prefix scan.
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("scan workspace: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), baseFilename) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return "", 0, fmt.Errorf("stat workspace file: %w", err)
		}
		if fi.Size() == 0 {
			return "", 0, domain.NewError(domain.KindEmptyResult, "materialized file is empty")
		}
		return filepath.Join(dir, e.Name()), fi.Size(), nil
	}
	return "", 0, domain.NewError(domain.KindEmptyResult, "materialization produced no file")
}

// inferExtension pulls the extension from the located filename,
// defaulting by media kind when there is none.
func inferExtension(path string, kind MediaKind) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "" {
		return ext
	}
	if kind == MediaPhoto {
		return "jpg"
	}
	return "mp4"
}
