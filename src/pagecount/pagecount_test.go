package pagecount

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// writeZip builds an office-style zip with the given member contents.
func writeZip(t *testing.T, name string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for member, content := range members {
		w, err := zw.Create(member)
		if err != nil {
			t.Fatalf("zip member: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

func TestCountSinglePageImages(t *testing.T) {
	counter := NewFileCounter()
	for _, ext := range []string{"png", "jpg", "jpeg", "gif", "bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := writeFile(t, "photo."+ext, []byte("not-really-pixels"))
			pages, err := counter.Count(path, "photo."+ext)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pages != 1 {
				t.Errorf("pages: got %d, want 1", pages)
			}
		})
	}
}

func TestCountEmptyFile(t *testing.T) {
	counter := NewFileCounter()
	path := writeFile(t, "empty.pdf", nil)
	if _, err := counter.Count(path, "empty.pdf"); !errors.Is(err, models.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestCountUnsupportedType(t *testing.T) {
	counter := NewFileCounter()
	path := writeFile(t, "program.exe", []byte{0x4d, 0x5a})
	if _, err := counter.Count(path, "program.exe"); !errors.Is(err, models.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestCountDocxWordHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		words int
		pages int
	}{
		{"single word", 1, 1},
		{"exactly one page", 350, 1},
		{"spills to second page", 351, 2},
		{"three pages", 1050, 3},
	}

	counter := NewFileCounter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "<?xml version=\"1.0\"?><document><body><p>" +
				strings.Repeat("word ", tt.words) + "</p></body></document>"
			path := writeZip(t, "report.docx", map[string]string{
				"word/document.xml": body,
				"[Content_Types].xml": "<Types/>",
			})
			pages, err := counter.Count(path, "report.docx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pages != tt.pages {
				t.Errorf("pages: got %d, want %d", pages, tt.pages)
			}
		})
	}
}

func TestCountDocxWithoutBodyUnsupported(t *testing.T) {
	counter := NewFileCounter()
	path := writeZip(t, "broken.docx", map[string]string{
		"[Content_Types].xml": "<Types/>",
	})
	if _, err := counter.Count(path, "broken.docx"); !errors.Is(err, models.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestCountXlsxSheets(t *testing.T) {
	counter := NewFileCounter()
	path := writeZip(t, "budget.xlsx", map[string]string{
		"xl/workbook.xml":          "<workbook/>",
		"xl/worksheets/sheet1.xml": "<worksheet/>",
		"xl/worksheets/sheet2.xml": "<worksheet/>",
		"xl/worksheets/sheet3.xml": "<worksheet/>",
	})
	pages, err := counter.Count(path, "budget.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 3 {
		t.Errorf("pages: got %d, want 3", pages)
	}
}
