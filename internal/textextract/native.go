package textextract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"
)

// TextLayer reads the embedded text of a PDF without rendering it.
type TextLayer interface {
	Text(buf []byte) (string, error)
}

// TextLayerFunc adapts a function to TextLayer.
type TextLayerFunc func(buf []byte) (string, error)

// Text implements TextLayer.
func (f TextLayerFunc) Text(buf []byte) (string, error) { return f(buf) }

// PDFTextLayer extracts text with rsc.io/pdf.
//
// rsc.io/pdf reports one positioned run per glyph and drops space glyphs,
// so word breaks are recovered from the horizontal gap between runs. Fonts
// without a Widths array (the standard 14 are often embedded that way) give
// every glyph zero advance, leaving no gaps to measure; those pages are read
// from the content stream operators instead, where literal spaces survive.
type PDFTextLayer struct{}

const (
	// lineTolerance is the baseline shift, in points, treated as a new line
	lineTolerance = 2.0
	// wordGap is the gap between runs, as a fraction of the font size,
	// treated as a word break
	wordGap = 0.2
	// kernSpace is the TJ adjustment, in thousandths of an em, that reads as
	// a space when glyph geometry is unavailable
	kernSpace = 200.0
)

// Text returns the text of every page, pages separated by a blank line.
// Malformed documents make the parser panic, so panics are converted into
// errors.
func (PDFTextLayer) Text(buf []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}

		runs := page.Content().Text
		if hasGlyphWidths(runs) {
			writePageText(&b, runs)
		} else {
			writeStreamText(&b, page)
		}
	}
	return b.String(), nil
}

func hasGlyphWidths(runs []pdf.Text) bool {
	for _, t := range runs {
		if t.W > 0 {
			return true
		}
	}
	return false
}

// writePageText lays glyph runs out in content-stream order
func writePageText(b *strings.Builder, runs []pdf.Text) {
	var prev *pdf.Text
	for i := range runs {
		t := &runs[i]
		switch {
		case prev == nil:
		case math.Abs(t.Y-prev.Y) > lineTolerance:
			b.WriteByte('\n')
		case t.X-(prev.X+prev.W) > wordGap*t.FontSize:
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prev = t
	}
}

// writeStreamText walks the page's text operators directly. Strings are
// decoded with the font selected by Tf; line moves start a new line.
func writeStreamText(b *strings.Builder, page pdf.Page) {
	w := streamWriter{b: b, start: b.Len(), enc: pdf.Font{}.Encoder()}

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), w.op(page))
		}
		return
	}
	pdf.Interpret(contents, w.op(page))
}

type streamWriter struct {
	b     *strings.Builder
	start int
	enc   pdf.TextEncoding
}

func (w *streamWriter) op(page pdf.Page) func(stk *pdf.Stack, op string) {
	return func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) == 2 {
				w.enc = page.Font(args[0].Name()).Encoder()
			}
		case "Td", "TD":
			if len(args) == 2 && args[1].Float64() != 0 {
				w.newline()
			}
		case "T*":
			w.newline()
		case "'", "\"":
			w.newline()
			if len(args) > 0 {
				w.show(args[len(args)-1])
			}
		case "Tj":
			if len(args) == 1 {
				w.show(args[0])
			}
		case "TJ":
			if len(args) != 1 {
				return
			}
			for i := 0; i < args[0].Len(); i++ {
				x := args[0].Index(i)
				if x.Kind() == pdf.String {
					w.show(x)
				} else if -x.Float64() >= kernSpace {
					w.space()
				}
			}
		}
	}
}

func (w *streamWriter) show(v pdf.Value) {
	if v.Kind() != pdf.String {
		return
	}
	w.b.WriteString(w.enc.Decode(v.RawString()))
}

func (w *streamWriter) last() byte {
	if w.b.Len() <= w.start {
		return '\n'
	}
	s := w.b.String()
	return s[len(s)-1]
}

func (w *streamWriter) space() {
	if c := w.last(); c != ' ' && c != '\n' {
		w.b.WriteByte(' ')
	}
}

func (w *streamWriter) newline() {
	if w.last() != '\n' {
		w.b.WriteByte('\n')
	}
}
