package storage

import (
	"errors"
	"net/http"
	"strings"
)

// MaxImageSize bounds a decoded recipe image.
const MaxImageSize = 10 << 20

var (
	// ErrUnsupportedImage is returned for uploads that are not a recognised image type.
	ErrUnsupportedImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrImageTooLarge    = errors.New("the submitted file is too large")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// DetectImage sniffs the content type of an uploaded file.
func DetectImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrUnsupportedImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}
	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	return &Image{Data: data, Ext: ext, ContentType: contentType}, nil
}
