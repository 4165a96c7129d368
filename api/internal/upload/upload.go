// Package upload turns a user-provided file into an image payload ready for analysis.
package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"homework-tutor/api/internal/util"
)

// DefaultMaxBytes bounds how much of a file is read into memory.
const DefaultMaxBytes = 10 << 20

var (
	ErrInvalidFileType = errors.New("please upload an image file")
	ErrEmptyFile       = errors.New("the file is empty")
	ErrTooLarge        = errors.New("the image is too large")
	ErrUndecodable     = errors.New("the image could not be read")
)

// decodable lists the types registered with package image. Anything else declared image/* is passed through.
var decodable = map[string]bool{
	"image/jpeg": true, "image/jpg": true, "image/pjpeg": true,
	"image/png": true, "image/gif": true, "image/bmp": true,
	"image/tiff": true, "image/webp": true,
}

// Image is an accepted upload. It is replaced wholesale on the next selection.
type Image struct {
	Name     string
	MIME     string
	Data     []byte
	DataURL  string
	Base64   string // DataURL without the data:<mime>;base64, prefix
	Width    int // zero when the format has no decoder
	Height   int
	Checksum string
}

// FromFile validates the declared content type, reads r fully and encodes it.
// An empty contentType falls back to sniffing the bytes.
func FromFile(name, contentType string, r io.Reader, maxBytes int64) (*Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	declared := mediaType(contentType)
	if declared != "" && !IsImageType(declared) {
		return nil, ErrInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return build(name, declared, data)
}

// FromBytes accepts an image that is already in memory, e.g. a chat photo.
func FromBytes(name string, data []byte) (*Image, error) {
	return build(name, "", data)
}

func build(name, declared string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	mt := declared
	if mt == "" {
		mt = util.SniffMimeHTTP(data)
		if !IsImageType(mt) {
			return nil, ErrInvalidFileType
		}
	}

	// форматы, для которых нет декодера (heic, avif), уходят к модели без размеров
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil && (decodable[mt] || !errors.Is(err, image.ErrFormat)) {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	b64 := base64.StdEncoding.EncodeToString(data)
	dataURL := util.MakeDataURL(mt, b64)
	return &Image{
		Name:     name,
		MIME:     mt,
		Data:     data,
		DataURL:  dataURL,
		Base64:   strings.TrimPrefix(dataURL, "data:"+mt+";base64,"),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Checksum: util.SHA256Hex(data),
	}, nil
}

// Message is the sentence to show a user for err, or "" when err is not a validation error.
// Decoder details stay out of it.
func Message(err error) string {
	for _, s := range []error{ErrInvalidFileType, ErrEmptyFile, ErrTooLarge, ErrUndecodable} {
		if errors.Is(err, s) {
			m := s.Error()
			return strings.ToUpper(m[:1]) + m[1:] + "."
		}
	}
	return ""
}

// IsImageType reports whether a media type names an image.
func IsImageType(mt string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mt)), "image/")
}

func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mt
}
