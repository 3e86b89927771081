package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vbonduro/aliados/internal/domain"
	"github.com/vbonduro/aliados/internal/imageenc"
)

const (
	maxFormMemory = 32 << 20
	formOverhead  = 1 << 20
)

// parseForm bounds the body to maxFiles images and parses it. Plain
// url-encoded forms are accepted too, for requests that carry no files.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	if s.maxImage > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*s.maxImage+formOverhead)
	}

	err := r.ParseMultipartForm(maxFormMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return &domain.ValidationError{Message: fmt.Sprintf("invalid form: %v", err)}
}

// formImage encodes the optional "image" file; no file yields "".
func (s *Server) formImage(r *http.Request) (string, error) {
	files := formFiles(r, "image")
	if len(files) == 0 {
		return "", nil
	}
	if len(files) > 1 {
		return "", domain.NewValidationError("image", "only one image is allowed")
	}
	return s.encoder.Encode(r.Context(), fileSource(files[0]))
}

// formImages encodes every "images" file in upload order; no files yields nil.
func (s *Server) formImages(r *http.Request) ([]string, error) {
	files := formFiles(r, "images")
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > maxProductImages {
		return nil, domain.NewValidationError("images", fmt.Sprintf("at most %d images are allowed", maxProductImages))
	}

	sources := make([]imageenc.Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, fileSource(fh))
	}
	return s.encoder.EncodeAll(r.Context(), sources)
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

func fileSource(fh *multipart.FileHeader) imageenc.Source {
	return func() (io.ReadCloser, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
