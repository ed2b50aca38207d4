package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

type backendFake struct {
	text  string
	err   error
	calls int
}

func (b *backendFake) Extract(_ context.Context, _ domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	b.calls++
	if progress != nil {
		progress(50)
	}
	return b.text, b.err
}

func TestRouterDispatchesByMIME(t *testing.T) {
	cases := []struct {
		mime      string
		wantPDF   int
		wantImage int
	}{
		{"application/pdf", 1, 0},
		{"Application/PDF; charset=binary", 1, 0},
		{"image/png", 0, 1},
		{"image/jpeg", 0, 1},
		{" IMAGE/WEBP ", 0, 1},
	}
	for _, tc := range cases {
		pdf := &backendFake{text: "pdf"}
		image := &backendFake{text: "image"}
		r := NewRouter(pdf, image)

		if _, err := r.Extract(context.Background(), domain.SourceFile{MimeType: tc.mime}, nil); err != nil {
			t.Fatalf("Extract(%q) error = %v", tc.mime, err)
		}
		if pdf.calls != tc.wantPDF || image.calls != tc.wantImage {
			t.Fatalf("Extract(%q) calls pdf=%d image=%d", tc.mime, pdf.calls, image.calls)
		}
	}
}

func TestRouterRejectsUnsupportedTypes(t *testing.T) {
	for _, mime := range []string{"text/plain", "application/msword", "", "application/pdfx"} {
		pdf := &backendFake{}
		image := &backendFake{}
		r := NewRouter(pdf, image)

		_, err := r.Extract(context.Background(), domain.SourceFile{MimeType: mime, Data: []byte("hi")}, nil)
		if !domain.IsKind(err, domain.ErrUnsupportedType) {
			t.Fatalf("Extract(%q) expected ErrUnsupportedType, got %v", mime, err)
		}
		if pdf.calls+image.calls != 0 {
			t.Fatalf("Extract(%q) must not touch any backend", mime)
		}
	}
}

func TestRouterWrapsBackendErrors(t *testing.T) {
	r := NewRouter(&backendFake{err: errors.New("xref table not found")}, nil)

	_, err := r.Extract(context.Background(), domain.SourceFile{MimeType: "application/pdf"}, nil)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestRouterForwardsProgress(t *testing.T) {
	r := NewRouter(nil, &backendFake{text: "ok"})

	var got []int
	if _, err := r.Extract(context.Background(), domain.SourceFile{MimeType: "image/png"}, func(p int) { got = append(got, p) }); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 || got[0] != 50 {
		t.Fatalf("expected forwarded progress, got %v", got)
	}
}

func TestRouterWithoutImageBackend(t *testing.T) {
	r := NewRouter(&backendFake{}, nil)
	if _, err := r.Extract(context.Background(), domain.SourceFile{MimeType: "image/png"}, nil); !domain.IsKind(err, domain.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
