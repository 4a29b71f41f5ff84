package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/painterhq/painter/internal/scene"
)

// WithExtension appends .painter when path lacks it.
func WithExtension(path string) string {
	if strings.HasSuffix(path, Extension) {
		return path
	}
	return path + Extension
}

// ProjectName is the file name a document is saved under.
func ProjectName(path string) string {
	return filepath.Base(WithExtension(path))
}

// Save writes s to path and returns the path actually written. The document
// goes to a temporary file in the same directory first and is renamed over
// the destination, so a failed or cancelled save leaves any previous file
// intact.
func Save(ctx context.Context, path string, s *scene.Scene) (string, error) {
	path = WithExtension(path)
	data, err := Encode(s, ProjectName(path), time.Now())
	if err != nil {
		return "", err
	}
	if err := WriteFile(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile atomically replaces path with data.
func WriteFile(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cancelled: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	committed = true
	return nil
}

// Load reads a document into a new scene. The caller's live scene is never
// touched, so a failed load leaves it as it was.
func Load(ctx context.Context, path string) (*scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
