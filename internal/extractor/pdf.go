package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

var (
	// ErrDocumentLoad is returned when a buffer cannot be decoded as a PDF.
	ErrDocumentLoad = errors.New("failed to load PDF document")
	// ErrPageExtraction is returned when a page or its text cannot be read.
	ErrPageExtraction = errors.New("failed to extract page text")
)

// PDFDocument is a PDF decoded from memory with ledongthuc/pdf.
// It is not safe for concurrent page requests.
type PDFDocument struct {
	reader *pdf.Reader
}

// Open decodes a PDF held in memory. The library panics on some malformed
// input; those panics come back as ErrDocumentLoad.
func Open(data []byte) (doc *PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: PDF library crashed: %v", ErrDocumentLoad, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrDocumentLoad)
	}
	return &PDFDocument{reader: r}, nil
}

// OpenDocument is Open returning the models.Document interface.
func OpenDocument(data []byte) (models.Document, error) {
	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// NumPage returns the number of pages.
func (d *PDFDocument) NumPage() int {
	return d.reader.NumPage()
}

// Page returns the page at zero-based index i.
func (d *PDFDocument) Page(i int) (page models.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = fmt.Errorf("%w: page %d: PDF library crashed: %v", ErrPageExtraction, i, r)
		}
	}()

	if i < 0 || i >= d.reader.NumPage() {
		return nil, fmt.Errorf("%w: page %d out of range (%d pages)", ErrPageExtraction, i, d.reader.NumPage())
	}
	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("%w: page %d is missing", ErrPageExtraction, i)
	}
	return &pdfPage{page: p, index: i}, nil
}

// Close drops the reader; the buffer itself belongs to the caller.
func (d *PDFDocument) Close() error {
	d.reader = nil
	return nil
}

type pdfPage struct {
	page  pdf.Page
	index int
}

// Fragments returns the text runs of the page. Glyphs are positioned by
// the text rendering matrix, so Td, Tm and TJ kerning are all honoured.
func (p *pdfPage) Fragments() (frags []models.Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("%w: page %d: PDF library crashed: %v", ErrPageExtraction, p.index, r)
		}
	}()

	return runs(p.page.Content().Text), nil
}

// runs joins glyphs that sit on one baseline into fragments positioned at
// their first glyph. A gap wider than two thirds of the font size starts a
// new fragment; a smaller gap past the glyph spacing, or a space glyph,
// becomes a single space.
func runs(glyphs []pdf.Text) []models.Fragment {
	chars := make([]pdf.Text, len(glyphs))
	copy(chars, glyphs)

	// Snap baselines that differ by less than a unit.
	const nudge = 1
	byBaseline := func(i, j int) bool {
		if chars[i].Y != chars[j].Y {
			return chars[i].Y > chars[j].Y
		}
		return chars[i].X < chars[j].X
	}
	sort.SliceStable(chars, byBaseline)
	old := math.Inf(1)
	for i := range chars {
		if chars[i].Y != old && math.Abs(old-chars[i].Y) < nudge {
			chars[i].Y = old
		} else {
			old = chars[i].Y
		}
	}
	sort.SliceStable(chars, byBaseline)

	var frags []models.Fragment
	var text strings.Builder
	var cur models.Fragment
	var end float64
	open, pendingSpace := false, false

	flush := func() {
		if open {
			cur.Text = text.String()
			frags = append(frags, cur)
		}
		text.Reset()
		open, pendingSpace = false, false
	}

	for _, c := range chars {
		blank := strings.TrimSpace(c.S) == ""
		if open && (c.Y != cur.Y || c.X > end+c.FontSize*2/3) {
			flush()
		}
		if blank {
			if open {
				pendingSpace = true
				end = math.Max(end, c.X+c.W)
			}
			continue
		}
		if !open {
			cur = models.Fragment{X: c.X, Y: c.Y}
			open = true
		} else if pendingSpace || c.X > end+c.FontSize/6 {
			text.WriteByte(' ')
		}
		pendingSpace = false
		text.WriteString(c.S)
		end = math.Max(end, c.X+c.W)
	}
	flush()
	return frags
}
