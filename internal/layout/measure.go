package layout

import (
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
)

// Measurer returns the advance width of a string in millimetres
type Measurer interface {
	TextWidth(text string, f Font) float64
}

// pdfMeasurer uses the core font metrics of the programmatic renderer, so
// line breaks are identical in every output
type pdfMeasurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewMeasurer returns a Measurer backed by gofpdf core font metrics
func NewMeasurer() Measurer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &pdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *pdfMeasurer) TextWidth(text string, f Font) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(CoreFont(f.Family), f.Style, f.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// Wrap breaks text into lines no wider than width. Explicit newlines are
// kept; a single word wider than width is left on its own line.
func Wrap(m Measurer, text string, f Font, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if m.TextWidth(candidate, f) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// Ellipsize shortens text with a trailing "..." until it fits width
func Ellipsize(m Measurer, text string, f Font, width float64) string {
	if m.TextWidth(text, f) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := strings.TrimRight(string(runes), " ") + "..."
		if m.TextWidth(s, f) <= width {
			return s
		}
	}
	return ""
}
