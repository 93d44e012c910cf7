package upload

import (
	"context"
	"errors"

	"marketplace-api/internal/domain"
)

// Uploader define la interfaz para subir imagenes al hosting y
// obtener la referencia persistible.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string) (domain.Image, error)
}

type disabledUploader struct {
	reason string
}

func NewDisabledUploader(reason string) Uploader {
	return &disabledUploader{reason: reason}
}

func (u *disabledUploader) Upload(_ context.Context, _ []byte, _ string) (domain.Image, error) {
	if u.reason == "" {
		return domain.Image{}, errors.New("image uploader disabled")
	}
	return domain.Image{}, errors.New(u.reason)
}
