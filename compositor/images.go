package compositor

import (
	"bytes"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

type ImageFormat int

const (
	UnknownImage ImageFormat = iota
	PNG
	JPEG
)

func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	}
	return "unknown"
}

var ErrUnsupportedImage = errors.New("unsupported image format")

// ImageResolver loads image payloads that are referenced by name rather than
// embedded as a data URL, such as stored signatures.
type ImageResolver interface {
	ResolveImage(ref string) ([]byte, error)
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// SniffImageFormat identifies PNG and JPEG payloads by their signature.
func SniffImageFormat(data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return PNG
	case bytes.HasPrefix(data, jpegMagic):
		return JPEG
	}
	return UnknownImage
}

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURL decodes a data:image/png or data:image/jpeg URL. The MIME
// type decides the format.
func DecodeDataURL(s string) ([]byte, ImageFormat, error) {
	comma := strings.IndexByte(s, ',')
	if !IsDataURL(s) || comma < 0 {
		return nil, UnknownImage, errors.New("malformed data URL")
	}

	header, payload := s[:comma], s[comma+1:]

	var format ImageFormat
	switch {
	case strings.HasPrefix(header, "data:image/png"):
		format = PNG
	case strings.HasPrefix(header, "data:image/jpeg"), strings.HasPrefix(header, "data:image/jpg"):
		format = JPEG
	default:
		return nil, UnknownImage, errors.Wrapf(ErrUnsupportedImage, "mime %q", strings.TrimPrefix(header, "data:"))
	}

	var data []byte
	var err error

	if strings.HasSuffix(header, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var unescaped string
		unescaped, err = url.PathUnescape(payload)
		data = []byte(unescaped)
	}

	if err != nil {
		return nil, UnknownImage, errors.Wrap(err, "decoding data URL payload")
	}

	return data, format, nil
}
