package models

// Fragment is one positioned piece of page text. Only the translation
// components of the text matrix are kept.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// Document is a decoded multi-page PDF.
type Document interface {
	NumPage() int
	// Page returns the page at the zero-based index i.
	Page(i int) (Page, error)
	Close() error
}

// Page yields the positioned text of a single page.
type Page interface {
	Fragments() ([]Fragment, error)
}
