package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotePreview(t *testing.T) {
	assert.Equal(t, "Hello world & friends", NotePreview("<h1>Hello</h1><p>world &amp; friends</p>"))
	assert.Equal(t, "", NotePreview(""))

	long := "<p>" + strings.Repeat("a", 150) + "</p>"
	got := NotePreview(long)
	assert.Equal(t, strings.Repeat("a", 100)+"...", got)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestReadImageInfo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	info, err := ReadImageInfo(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 12, info.Width)
	assert.Equal(t, 7, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, "image/png", info.ContentType)

	_, err = ReadImageInfo([]byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
