package storage

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURI is returned for strings that are not base64 image data URIs.
var ErrInvalidDataURI = errors.New("image must be a base64 data URI of the form data:image/<ext>;base64,<payload>")

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

// DecodeDataURI parses data:image/<ext>;base64,<payload>. The declared
// subtype is ignored once decoded; type and extension come from the content.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, ErrInvalidDataURI
	}
	subtype := strings.TrimPrefix(header, "data:image/")
	if subtype == "" || strings.ContainsAny(subtype, "/;,") {
		return nil, ErrInvalidDataURI
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+2 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	return DetectImage(data)
}
