package compositor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
		img.Set(x, 1, color.RGBA{B: 200, A: 255})
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURL(t *testing.T) {
	pngData := pngBytes(t)
	jpegData := jpegBytes(t)

	data, format, err := DecodeDataURL(dataURL("image/png", pngData))
	require.NoError(t, err)
	assert.Equal(t, PNG, format)
	assert.Equal(t, pngData, data)

	data, format, err = DecodeDataURL(dataURL("image/jpeg", jpegData))
	require.NoError(t, err)
	assert.Equal(t, JPEG, format)
	assert.Equal(t, jpegData, data)

	_, format, err = DecodeDataURL(dataURL("image/jpg", jpegData))
	require.NoError(t, err)
	assert.Equal(t, JPEG, format)
}

func TestDecodeDataURLUnpadded(t *testing.T) {
	pngData := pngBytes(t)
	url := "data:image/png;base64," + base64.RawStdEncoding.EncodeToString(pngData)

	data, _, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
}

func TestDecodeDataURLErrors(t *testing.T) {
	_, _, err := DecodeDataURL(dataURL("image/gif", []byte("GIF89a")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, _, err = DecodeDataURL("/sign/a.png")
	assert.Error(t, err)

	_, _, err = DecodeDataURL("data:image/png;base64")
	assert.Error(t, err)

	_, _, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestSniffImageFormat(t *testing.T) {
	assert.Equal(t, PNG, SniffImageFormat(pngBytes(t)))
	assert.Equal(t, JPEG, SniffImageFormat(jpegBytes(t)))
	assert.Equal(t, UnknownImage, SniffImageFormat([]byte("GIF89a")))
	assert.Equal(t, UnknownImage, SniffImageFormat(nil))
}
