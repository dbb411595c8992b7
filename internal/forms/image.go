package forms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"

	// decoders for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/afivan20/yatube/internal/storage"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps uploaded post images.
const MaxImageSize = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ReadImage loads an uploaded file and checks that it really is an image:
// the sniffed type must be allowed and the header must decode.
func ReadImage(header *multipart.FileHeader) (*storage.Image, error) {
	if header.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	return CheckImage(data, header.Filename)
}

// CheckImage validates raw image bytes.
func CheckImage(data []byte, filename string) (*storage.Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, ErrInvalidImage
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, ErrInvalidImage
	}

	return &storage.Image{
		Data:        data,
		Filename:    filename,
		ContentType: mtype.String(),
	}, nil
}

// ImageError is the form message for an image error.
func ImageError(err error) string {
	if errors.Is(err, ErrImageTooLarge) {
		return MsgImageTooLarge
	}
	return MsgInvalidImage
}
