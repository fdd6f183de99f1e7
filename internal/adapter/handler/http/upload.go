package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

const (
	coverField   = "cover"
	maxCoverSize = 5 << 20
)

var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// formCover reads the optional cover file of a multipart request. The
// returned close func is never nil.
func formCover(c echo.Context) (*repository.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(coverField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, domainerrors.Validation("Invalid multipart form", map[string]string{coverField: err.Error()})
	}

	if fh.Size > maxCoverSize {
		return nil, noop, domainerrors.Validation("Cover is too large", map[string]string{coverField: "must be at most 5MB"})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, domainerrors.Validation("Invalid cover", map[string]string{coverField: err.Error()})
	}

	// sniff instead of trusting the client header
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, noop, domainerrors.Validation("Invalid cover", map[string]string{coverField: err.Error()})
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedCoverTypes[contentType] {
		f.Close()
		return nil, noop, domainerrors.Validation("Unsupported cover type", map[string]string{coverField: "must be a jpeg, png, gif or webp image"})
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, noop, domainerrors.Internal("failed to read cover", err)
	}

	return &repository.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}

// jsonField decodes a JSON-encoded multipart field into dst. It reports
// whether the field was present.
func jsonField(c echo.Context, name string, dst interface{}) (bool, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, domainerrors.Validation("Validation failed", map[string]string{name: "must be a JSON array"})
	}
	return true, nil
}
