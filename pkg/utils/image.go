package utils

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("file is not a supported image")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func IsValidImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

type ImageInfo struct {
	Width       int
	Height      int
	Format      string
	ContentType string
}

// ReadImageInfo sniffs the content type and reads the dimensions from the
// header without decoding the pixels.
func ReadImageInfo(data []byte) (ImageInfo, error) {
	contentType := http.DetectContentType(data)
	if !IsValidImageType(contentType) {
		return ImageInfo{}, ErrUnsupportedImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, ErrUnsupportedImage
	}
	return ImageInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		ContentType: contentType,
	}, nil
}
