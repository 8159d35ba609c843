package extraction

import (
	"fmt"
	"math"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDF reads positioned glyphs, so it can crop a page into columns
type PDF struct {
	tolerance Tolerance
}

// NewPDF creates a PDF extractor joining glyphs with tol
func NewPDF(tol Tolerance) *PDF {
	return &PDF{tolerance: tol}
}

// Open opens the PDF at path
func (p *PDF) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &pdfDocument{file: f, reader: r, tolerance: p.tolerance}, nil
}

type pdfDocument struct {
	file      *os.File
	reader    *pdf.Reader
	tolerance Tolerance
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

// Lines returns the lines of text whose glyphs start inside region
func (d *pdfDocument) Lines(page int, region Region) (lines []string, err error) {
	// ledongthuc/pdf panics on malformed content streams
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("reading page %d: %v", page+1, r)
		}
	}()

	p := d.reader.Page(page + 1)
	if p.V.IsNull() {
		return nil, nil
	}

	texts := p.Content().Text
	x0, x1 := region.bounds(pageBox(p, texts))
	return buildLines(crop(texts, x0, x1), d.tolerance), nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// maxParents bounds the /Parent walk of a malformed page tree
const maxParents = 32

// pageBox returns the horizontal extent of the page's MediaBox, inherited
// through the /Parent chain when the page has none of its own. Without any
// box it spans the glyphs.
func pageBox(p pdf.Page, texts []pdf.Text) (left, right float64) {
	v := p.V
	for range maxParents {
		if v.IsNull() {
			break
		}
		if box := v.Key("MediaBox"); box.Len() == 4 {
			x0, x1 := box.Index(0).Float64(), box.Index(2).Float64()
			if x1 < x0 {
				x0, x1 = x1, x0
			}
			if x1 > x0 {
				return x0, x1
			}
		}
		v = v.Key("Parent")
	}

	if len(texts) == 0 {
		return 0, 0
	}
	left, right = math.Inf(1), math.Inf(-1)
	for _, t := range texts {
		left = min(left, t.X)
		right = max(right, t.X+t.W)
	}
	return left, right
}
