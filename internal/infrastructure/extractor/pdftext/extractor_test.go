package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// buildPDF assembles a minimal uncompressed PDF with one Helvetica line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, "") // page tree, filled below
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var kids []string
	for _, text := range pages {
		content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		contentNum := len(objects) + 2
		pageNum := len(objects) + 1
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum,
		))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

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

func TestNativeExtractsPagesInOrder(t *testing.T) {
	e, err := New(BackendNative)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text, err := e.Extract(context.Background(), domain.SourceFile{
		Filename: "two-pages.pdf",
		MimeType: "application/pdf",
		Data:     buildPDF(t, "Hello", "World"),
	}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Hello\nWorld" {
		t.Fatalf("Extract() = %q, want %q", text, "Hello\nWorld")
	}
}

func TestNativeRejectsGarbage(t *testing.T) {
	e, _ := New(BackendNative)

	_, err := e.Extract(context.Background(), domain.SourceFile{Filename: "broken.pdf", Data: []byte("not a pdf at all")}, nil)
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestScanFallbackOnBackendFailure(t *testing.T) {
	e, _ := New(BackendNative, WithScanFallback(true))

	text, err := e.Extract(context.Background(), domain.SourceFile{
		Filename: "truncated.pdf",
		Data:     []byte("%PDF-1.4 garbage BT (Quarterly) Tj (report) Tj ET"),
	}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Quarterly report" {
		t.Fatalf("unexpected fallback text %q", text)
	}
}

func TestScanShowTextNoMatch(t *testing.T) {
	if got := ScanShowText([]byte("%PDF-1.7 compressed streams only")); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestScanShowTextOnFixture(t *testing.T) {
	if got := ScanShowText(buildPDF(t, "Hello", "World")); got != "Hello World" {
		t.Fatalf("ScanShowText() = %q", got)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("mupdf"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
