package extraction

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Fitz reads whole-page text through MuPDF. It cannot crop, so it only
// serves single-column receipts.
type Fitz struct{}

// NewFitz creates a Fitz extractor
func NewFitz() *Fitz {
	return &Fitz{}
}

// Open opens the PDF at path
func (Fitz) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

// Lines returns the text of a whole page
func (d *fitzDocument) Lines(page int, region Region) ([]string, error) {
	if region != FullPage {
		return nil, fmt.Errorf("region %d of %d: %w", region.Index+1, region.Of, ErrCropUnsupported)
	}

	text, err := d.doc.Text(page)
	if err != nil {
		return nil, fmt.Errorf("extracting text of page %d: %w", page+1, err)
	}
	return splitLines(text), nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
