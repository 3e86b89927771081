// Package imageenc turns uploaded image bytes into the data: URLs the catalog
// stores for partner and product images.
package imageenc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Source opens one image. The encoder closes what it opens.
type Source func() (io.ReadCloser, error)

type Encoder struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewEncoder returns an Encoder rejecting images larger than maxBytes.
// A non-positive maxBytes disables the limit.
func NewEncoder(maxBytes int64, logger *slog.Logger) *Encoder {
	return &Encoder{maxBytes: maxBytes, logger: logger}
}

// Encode reads src and returns "data:<mime>;base64,<payload>".
func (e *Encoder) Encode(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := src()
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			e.logger.Error("failed to close image source", "error", err)
		}
	}()

	var r io.Reader = rc
	if e.maxBytes > 0 {
		r = io.LimitReader(rc, e.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, e.maxBytes)
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return "", ErrUnsupportedFormat
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeAll encodes every source concurrently. Results keep the order of
// sources. The first failure cancels the rest and no partial result is
// returned.
func (e *Encoder) EncodeAll(ctx context.Context, sources []Source) ([]string, error) {
	out := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			encoded, err := e.Encode(gctx, src)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = encoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}
