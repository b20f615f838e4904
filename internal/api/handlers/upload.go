package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
)

const maxUploadBytes = 32 << 20

// Uploader stores listing images on local disk. Cloud object storage stays
// an external concern; only the resulting URL is recorded on the listing.
type Uploader struct {
	Dir string
}

// Save extracts an uploaded image from the request, returning nil when the
// request carries no file.
func (u *Uploader) Save(r *http.Request, field string) (*domain.Image, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, nil
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return nil, err
	}

	filename := uuid.New().String() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(u.Dir, filename))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, err
	}

	return &domain.Image{
		URL:      "/public/uploads/" + filename,
		Filename: filename,
	}, nil
}
