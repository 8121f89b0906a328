package asset

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeLogo(t *testing.T) {
	payload := pngPayload(t, 120, 60)

	logo, err := DecodeLogo(payload, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", logo.MIME)
	assert.Equal(t, "PNG", logo.Format)
	assert.Equal(t, 120, logo.Width)
	assert.Equal(t, 60, logo.Height)

	logo, err = DecodeLogo("data:image/png;base64,"+payload, 0)
	require.NoError(t, err)
	assert.Equal(t, 120, logo.Width)
}

func TestDecodeLogo_Empty(t *testing.T) {
	logo, err := DecodeLogo("  ", 0)
	assert.NoError(t, err)
	assert.Nil(t, logo)
}

func TestDecodeLogo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		max     int
	}{
		{"not base64", "%%%not-base64%%%", 0},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world, plain text")), 0},
		{"too large", pngPayload(t, 200, 200), 64},
		{"data url without comma", "data:image/png;base64", 0},
		{"oversized before decode", strings.Repeat("A", 4096), 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLogo(tt.payload, tt.max)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		maxW, maxH   float64
		wantW, wantH float64
	}{
		{"fits already", 20, 10, 40, 20, 20, 10},
		{"wide", 80, 20, 40, 20, 40, 10},
		{"tall", 10, 40, 40, 20, 5, 20},
		{"never upscales", 4, 2, 40, 20, 4, 2},
		{"degenerate", 0, 10, 40, 20, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.InDelta(t, tt.wantH, h, 1e-9)
		})
	}
}

func TestResize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	dst := Resize(src, 5, 3)
	assert.Equal(t, 5, dst.Bounds().Dx())
	assert.Equal(t, 3, dst.Bounds().Dy())
}
