package textextract

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// helvetica carries no Widths array, like most standard-14 font embeds
	helvetica = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"
	// courier declares its monospaced metrics for printable ASCII
	courierFirstChar = 32
	courierLastChar  = 126
)

var courier = fmt.Sprintf(
	"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar %d /LastChar %d /Widths [%s] >>",
	courierFirstChar, courierLastChar,
	strings.TrimSpace(strings.Repeat("600 ", courierLastChar-courierFirstChar+1)),
)

// buildTestPDF writes a single-page PDF with one Helvetica text line per
// entry.
func buildTestPDF(lines ...string) []byte {
	return buildPDF(helvetica, lineStream(lines))
}

// buildMetricPDF is buildTestPDF with a font that declares glyph widths.
func buildMetricPDF(lines ...string) []byte {
	return buildPDF(courier, lineStream(lines))
}

func lineStream(lines []string) string {
	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("0 -16 Td\n")
		}
		escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(line)
		fmt.Fprintf(&content, "(%s) Tj\n", escaped)
	}
	content.WriteString("ET\n")
	return content.String()
}

// buildPDF wraps a content stream and font dictionary into a one-page PDF,
// computing the xref offsets so rsc.io/pdf can open it.
func buildPDF(font, stream string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
		font,
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
