package reflection

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageSink stores rendered image bytes and returns the URL they are
// served under.
type ImageSink interface {
	Save(name string, data []byte) (string, error)
}

// FileSink writes images to a local directory served by the API under
// /api/images/.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Save writes the image file and returns its public URL path.
func (s *FileSink) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/api/images/" + name, nil
}
