package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecode_Base64PNG(t *testing.T) {
	img, err := NewValidator(0).Decode(pngBase64(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Greater(t, img.Size, 0)
}

func TestDecode_DataURL(t *testing.T) {
	img, err := NewValidator(1 << 20).Decode("data:image/png;base64," + pngBase64(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
}

func TestDecode_UnpaddedBase64(t *testing.T) {
	s := strings.TrimRight(pngBase64(t, 5, 5), "=")
	_, err := NewValidator(0).Decode(s)
	assert.NoError(t, err)
}

func TestDecode_Errors(t *testing.T) {
	big := pngBase64(t, 64, 64)
	tests := []struct {
		name    string
		max     int
		payload string
		want    error
	}{
		{"empty", 0, "   ", ErrEmpty},
		{"not base64", 0, "!!!not-base64!!!", ErrNotBase64},
		{"data url without base64 marker", 0, "data:image/png," + big, ErrNotBase64},
		{"text is not an image", 0, base64.StdEncoding.EncodeToString([]byte("hello world")), ErrUnknownFormat},
		{"over the limit", 16, big, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValidator(tt.max).Decode(tt.payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// 1x1 transparent GIF
const gifDataURL = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

func TestDecode_GIF(t *testing.T) {
	img, err := NewValidator(0).Decode(gifDataURL)
	require.NoError(t, err)
	assert.Equal(t, "gif", img.Format)
	assert.Equal(t, 1, img.Width)
}

func TestPayload_OpaqueBytes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		size    int
	}{
		{"plain text", "aGVsbG8gd29ybGQ=", 11},
		{"gif data url", gifDataURL, 42},
		{"unpadded", "aGVsbG8gd29ybGQ", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewValidator(1 << 10).Payload(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.size, n)
		})
	}
}

func TestPayload_Errors(t *testing.T) {
	_, err := NewValidator(0).Payload("")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = NewValidator(0).Payload("%%%")
	assert.ErrorIs(t, err, ErrNotBase64)
	_, err = NewValidator(4).Payload("aGVsbG8gd29ybGQ=")
	assert.ErrorIs(t, err, ErrTooLarge)
}
