// Package media validates the base64 images clients attach to enrollment
// and attendance requests. Images are stored as received. Attendance captures
// are opaque (encoding and size only); enrollment images also have their header decoded.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmpty         = errors.New("image is empty")
	ErrTooLarge      = errors.New("image exceeds size limit")
	ErrNotBase64     = errors.New("image is not valid base64")
	ErrUnknownFormat = errors.New("image format not supported")
)

// Image is a decoded upload header.
type Image struct {
	Format string
	Width  int
	Height int
	Size   int
}

// Validator checks uploads against a decoded size limit. A zero MaxBytes disables the limit.
type Validator struct {
	MaxBytes int
}

func NewValidator(maxBytes int) Validator { return Validator{MaxBytes: maxBytes} }

// Payload checks that payload is non-empty base64 (bare or a
// "data:...;base64," URL) within the size limit, and returns the decoded size.
// The bytes themselves are not interpreted.
func (v Validator) Payload(payload string) (int, error) {
	buf, err := v.bytes(payload)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Decode runs the Payload checks and then inspects the image header.
func (v Validator) Decode(payload string) (Image, error) {
	buf, err := v.bytes(payload)
	if err != nil {
		return Image{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return Image{Format: format, Width: cfg.Width, Height: cfg.Height, Size: len(buf)}, nil
}

func (v Validator) bytes(payload string) ([]byte, error) {
	raw := strings.TrimSpace(payload)
	if raw == "" {
		return nil, ErrEmpty
	}
	if strings.HasPrefix(raw, "data:") {
		i := strings.Index(raw, ",")
		if i < 0 || !strings.HasSuffix(raw[:i], ";base64") {
			return nil, ErrNotBase64
		}
		raw = raw[i+1:]
	}

	// 4 base64 chars encode 3 bytes; reject before allocating
	if v.MaxBytes > 0 && base64.StdEncoding.DecodedLen(len(raw)) > v.MaxBytes+2 {
		return nil, ErrTooLarge
	}

	buf, err := decodeBase64(raw)
	if err != nil {
		return nil, ErrNotBase64
	}
	if len(buf) == 0 {
		return nil, ErrEmpty
	}
	if v.MaxBytes > 0 && len(buf) > v.MaxBytes {
		return nil, ErrTooLarge
	}
	return buf, nil
}

func decodeBase64(s string) ([]byte, error) {
	if buf, err := base64.StdEncoding.DecodeString(s); err == nil {
		return buf, nil
	}
	// some browsers drop the padding
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
