package imageenc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegData = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifData  = []byte("GIF89a\x01\x00\x01\x00")
	webpData = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func bytesSource(data []byte) Source {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

func newTestEncoder(maxBytes int64) *Encoder {
	return NewEncoder(maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEncodeDetectsFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
	}{
		{"jpeg", jpegData, "image/jpeg"},
		{"png", pngData, "image/png"},
		{"gif", gifData, "image/gif"},
		{"webp", webpData, "image/webp"},
	}

	enc := newTestEncoder(1 << 20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(context.Background(), bytesSource(tt.data))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, "data:"+tt.mime+";base64,"), got)
		})
	}
}

func TestEncodePayload(t *testing.T) {
	got, err := newTestEncoder(0).Encode(context.Background(), bytesSource(jpegData))
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4AAQSkZJRg==", got)
}

func TestEncodeRejectsNonImage(t *testing.T) {
	_, err := newTestEncoder(0).Encode(context.Background(), bytesSource([]byte("just some text")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeRejectsOversized(t *testing.T) {
	_, err := newTestEncoder(4).Encode(context.Background(), bytesSource(jpegData))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeOpenError(t *testing.T) {
	failing := func() (io.ReadCloser, error) { return nil, errors.New("boom") }
	_, err := newTestEncoder(0).Encode(context.Background(), failing)
	assert.ErrorContains(t, err, "boom")
}

func TestEncodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestEncoder(0).Encode(ctx, bytesSource(jpegData))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeAllKeepsOrder(t *testing.T) {
	got, err := newTestEncoder(0).EncodeAll(context.Background(), []Source{
		bytesSource(pngData), bytesSource(jpegData), bytesSource(gifData),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "data:image/png"))
	assert.True(t, strings.HasPrefix(got[1], "data:image/jpeg"))
	assert.True(t, strings.HasPrefix(got[2], "data:image/gif"))
}

func TestEncodeAllIsAllOrNothing(t *testing.T) {
	got, err := newTestEncoder(0).EncodeAll(context.Background(), []Source{
		bytesSource(pngData), bytesSource([]byte("not an image")), bytesSource(jpegData),
	})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Nil(t, got)
}

func TestEncodeAllClosesSources(t *testing.T) {
	var closed atomic.Int32
	src := func() (io.ReadCloser, error) {
		return &countingCloser{Reader: bytes.NewReader(jpegData), closed: &closed}, nil
	}

	_, err := newTestEncoder(0).EncodeAll(context.Background(), []Source{src, src})
	require.NoError(t, err)
	assert.Equal(t, int32(2), closed.Load())
}

func TestEncodeAllEmpty(t *testing.T) {
	got, err := newTestEncoder(0).EncodeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type countingCloser struct {
	io.Reader
	closed *atomic.Int32
}

func (c *countingCloser) Close() error {
	c.closed.Add(1)
	return nil
}

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantMIME     string
		wantDetected bool
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "image/jpeg", true},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "image/png", true},
		{"GIF", []byte("GIF89a"), "image/gif", true},
		{"WebP", append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...), "image/webp", true},
		{"RIFF but not WebP", append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 10)...), "", false},
		{"PDF disguised as image", []byte("%PDF-1.4 malicious content"), "", false},
		{"empty", []byte{}, "", false},
		{"too short for WebP check", []byte("RIFF"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotDetected := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantDetected, gotDetected)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}
