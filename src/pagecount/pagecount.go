package pagecount

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

// wordsPerPage is the heuristic used for word-processing documents that do
// not carry an explicit page count in their metadata.
const wordsPerPage = 350

// Counter resolves how many printable pages a stored upload contains.
type Counter interface {
	Count(fileRef string, declaredName string) (int, error)
}

// FileCounter counts pages by inspecting the file on disk. Dispatch is by
// extension of the originally declared name.
type FileCounter struct{}

// NewFileCounter returns the default page counter.
func NewFileCounter() *FileCounter {
	return &FileCounter{}
}

// Count returns the page count, models.ErrEmptyFile for a zero-byte upload
// or models.ErrUnsupportedFile when the type is not recognized.
func (c *FileCounter) Count(fileRef string, declaredName string) (int, error) {
	info, err := os.Stat(fileRef)
	if err != nil {
		return 0, fmt.Errorf("failed to stat upload: %w", err)
	}
	if info.Size() == 0 {
		return 0, models.ErrEmptyFile
	}

	switch strings.ToLower(filepath.Ext(declaredName)) {
	case ".pdf":
		return countPDF(fileRef)
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		// Single-page raster formats.
		return 1, nil
	case ".docx":
		return countDocx(fileRef)
	case ".xlsx":
		return countXlsx(fileRef)
	default:
		return 0, models.ErrUnsupportedFile
	}
}

func countPDF(fileRef string) (int, error) {
	f, r, err := pdf.Open(fileRef)
	if err != nil {
		return 0, fmt.Errorf("failed to parse pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}

// countDocx estimates pages from the word count of the main document part.
func countDocx(fileRef string) (int, error) {
	zr, err := zip.OpenReader(fileRef)
	if err != nil {
		return 0, fmt.Errorf("failed to open docx: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return 0, fmt.Errorf("failed to read docx body: %w", err)
		}
		defer rc.Close()

		words, err := countWords(rc)
		if err != nil {
			return 0, err
		}
		pages := (words + wordsPerPage - 1) / wordsPerPage
		if pages < 1 {
			pages = 1
		}
		return pages, nil
	}
	return 0, models.ErrUnsupportedFile
}

// countXlsx counts worksheet parts; each sheet prints as one page.
func countXlsx(fileRef string) (int, error) {
	zr, err := zip.OpenReader(fileRef)
	if err != nil {
		return 0, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer zr.Close()

	sheets := 0
	for _, zf := range zr.File {
		if strings.HasPrefix(zf.Name, "xl/worksheets/") && strings.HasSuffix(zf.Name, ".xml") {
			sheets++
		}
	}
	if sheets == 0 {
		return 0, models.ErrUnsupportedFile
	}
	return sheets, nil
}

func countWords(r io.Reader) (int, error) {
	dec := xml.NewDecoder(r)
	words := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return words, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to decode document xml: %w", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			words += len(strings.Fields(string(cd)))
		}
	}
}
