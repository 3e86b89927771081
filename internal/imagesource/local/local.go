// Package local opens image files from a directory for the seed tool.
package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/aliados/internal/imageenc"
)

var ErrImageNotFound = errors.New("image not found")

type Dir struct {
	basePath string
}

func NewDir(basePath string) (*Dir, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image directory %s is not a directory", basePath)
	}
	return &Dir{basePath: basePath}, nil
}

// Open returns the file name resolved under the directory.
func (d *Dir) Open(name string) (io.ReadCloser, error) {
	filePath, err := d.safeJoin(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Source defers opening name until the encoder asks for it.
func (d *Dir) Source(name string) imageenc.Source {
	return func() (io.ReadCloser, error) {
		return d.Open(name)
	}
}

// Sources maps each name to a Source, preserving order.
func (d *Dir) Sources(names []string) []imageenc.Source {
	out := make([]imageenc.Source, 0, len(names))
	for _, name := range names {
		out = append(out, d.Source(name))
	}
	return out
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (d *Dir) safeJoin(name string) (string, error) {
	absBase, err := filepath.Abs(d.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(d.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
