// Package imagecodec converts uploaded images to a transport-safe text form and back.
package imagecodec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIME is used when the payload is not recognised as an image.
const DefaultMIME = "image/jpeg"

// Encode returns the standard base64 form of raw.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode is the exact inverse of Encode.
func Decode(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return raw, nil
}

// DetectType sniffs the MIME type of raw. Anything that is not an image
// is reported as DefaultMIME.
func DetectType(raw []byte) string {
	mtype := mimetype.Detect(raw)
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return DefaultMIME
}

// DataURI embeds raw as a data URI suitable for vision model input.
func DataURI(raw []byte) string {
	return "data:" + DetectType(raw) + ";base64," + Encode(raw)
}

// Extension returns the file extension registered for an image MIME type.
func Extension(mime string) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".jpg"
}
