package render

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vstanchev/gh-metrics/internal/domain"
	"github.com/vstanchev/gh-metrics/internal/snapshot"
)

// Renderer writes the two derived documents for a snapshot.
type Renderer struct {
	logger *zap.Logger
}

// New creates a Renderer.
func New(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// RenderSnapshotFile loads and validates a snapshot file, then writes the
// HTML dashboard and markdown summary. A malformed snapshot is fatal and
// leaves any existing output files untouched.
func (r *Renderer) RenderSnapshotFile(snapshotPath, htmlPath, markdownPath string) error {
	snap, err := snapshot.LoadFile(snapshotPath)
	if err != nil {
		return err
	}
	return r.WriteFiles(snap, htmlPath, markdownPath)
}

// WriteFiles renders both documents and overwrites the target files
// unconditionally. Both documents are rendered in memory first; nothing
// touches the filesystem unless both renders succeed.
func (r *Renderer) WriteFiles(snap *domain.Snapshot, htmlPath, markdownPath string) error {
	htmlDoc, err := HTML(snap)
	if err != nil {
		return err
	}
	markdownDoc, err := Markdown(snap)
	if err != nil {
		return err
	}

	var eg errgroup.Group
	eg.Go(func() error { return writeFile(htmlPath, htmlDoc) })
	eg.Go(func() error { return writeFile(markdownPath, markdownDoc) })
	if err := eg.Wait(); err != nil {
		return err
	}

	r.logger.Info("rendered outputs",
		zap.String("html", htmlPath),
		zap.String("markdown", markdownPath),
		zap.Int("repositories", len(snap.Repos)-1))
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
