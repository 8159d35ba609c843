package extraction

import (
	"errors"
	"math"
)

// ErrCropUnsupported is returned by backends that can only read whole pages
var ErrCropUnsupported = errors.New("backend cannot crop page regions")

// Region is one of Of equal-width vertical strips of a page, counted from the left
type Region struct {
	Index int
	Of    int
}

// FullPage is the whole page as a single region
var FullPage = Region{Index: 0, Of: 1}

// Columns splits a page into n side-by-side regions
func Columns(n int) []Region {
	if n < 1 {
		n = 1
	}
	regions := make([]Region, n)
	for i := range regions {
		regions[i] = Region{Index: i, Of: n}
	}
	return regions
}

// bounds returns the horizontal extent of the region on a page spanning
// [left, right). The outer strips are open-ended so every glyph lands in
// exactly one region.
func (r Region) bounds(left, right float64) (x0, x1 float64) {
	if r.Of <= 1 {
		return math.Inf(-1), math.Inf(1)
	}

	step := (right - left) / float64(r.Of)
	x0, x1 = left+step*float64(r.Index), left+step*float64(r.Index+1)
	if r.Index == 0 {
		x0 = math.Inf(-1)
	}
	if r.Index == r.Of-1 {
		x1 = math.Inf(1)
	}
	return x0, x1
}

// Document is an opened PDF
type Document interface {
	// NumPage returns the page count
	NumPage() int
	// Lines returns the visible text of a page region, top to bottom.
	// Pages are numbered from zero.
	Lines(page int, region Region) ([]string, error)
	// Close releases the document
	Close() error
}

// Extractor opens documents for text extraction
type Extractor interface {
	Open(path string) (Document, error)
}
