package asset

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/samber/lo"
)

// DefaultMaxBytes caps the decoded size of an embedded logo
const DefaultMaxBytes = 1 << 20

// PxPerMM converts CSS pixels (96 dpi) to millimetres
const PxPerMM = 96.0 / 25.4

var supported = []string{
	matchers.TypePng.MIME.Value,
	matchers.TypeJpeg.MIME.Value,
	matchers.TypeGif.MIME.Value,
}

// Logo is a decoded, sniffed logo image. Format is the gofpdf image type.
type Logo struct {
	Data   []byte
	MIME   string
	Format string
	Width  int
	Height int
}

// DecodeLogo parses a base64 payload, optionally wrapped in a data URL.
// An empty payload yields a nil logo and no error.
func DecodeLogo(payload string, maxBytes int) (*Logo, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ierr.NewError("malformed data url").
				WithHint("Logo must be a base64 encoded image").
				Mark(ierr.ErrValidation)
		}
		payload = payload[idx+1:]
	}

	// reject before allocating for obviously oversized payloads
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+3 {
		return nil, tooLarge(maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Logo must be a base64 encoded image").
			Mark(ierr.ErrValidation)
	}
	if len(data) > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil || !lo.Contains(supported, kind.MIME.Value) {
		return nil, ierr.NewError("unsupported logo format").
			WithHint("Logo must be a PNG, JPEG or GIF image").
			WithReportableDetails(map[string]any{
				"detected": kind.MIME.Value,
			}).
			Mark(ierr.ErrValidation)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ierr.NewError("undecodable logo").
			WithHint("Logo image could not be read").
			Mark(ierr.ErrValidation)
	}

	return &Logo{
		Data:   data,
		MIME:   kind.MIME.Value,
		Format: formatFor(kind.MIME.Value),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Image decodes the full bitmap
func (l *Logo) Image() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(l.Data))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Logo image could not be read").
			Mark(ierr.ErrRender)
	}
	return img, nil
}

// NativeSizeMM is the printed size of the logo at 96 dpi
func (l *Logo) NativeSizeMM() (float64, float64) {
	return float64(l.Width) / PxPerMM, float64(l.Height) / PxPerMM
}

// FitMM scales the logo into a maxW x maxH millimetre box keeping its
// aspect ratio. It never scales beyond the native size.
func (l *Logo) FitMM(maxW, maxH float64) (float64, float64) {
	w, h := l.NativeSizeMM()
	return Fit(w, h, maxW, maxH)
}

// Fit scales (w, h) down into (maxW, maxH) preserving aspect ratio
func Fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := 1.0
	if maxW > 0 && w*scale > maxW {
		scale = maxW / w
	}
	if maxH > 0 && h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}

func formatFor(mime string) string {
	switch mime {
	case matchers.TypeJpeg.MIME.Value:
		return "JPG"
	case matchers.TypeGif.MIME.Value:
		return "GIF"
	default:
		return "PNG"
	}
}

func tooLarge(maxBytes int) error {
	return ierr.NewErrorf("logo exceeds %d bytes", maxBytes).
		WithHintf("Logo must be smaller than %d KB", maxBytes/1024).
		WithReportableDetails(map[string]any{
			"max_bytes": maxBytes,
		}).
		Mark(ierr.ErrValidation)
}
