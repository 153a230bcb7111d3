package parser

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

// row builds the cells of one page row from alternating column keys and
// values.
func row(kv ...interface{}) map[int]string {
	cells := make(map[int]string)
	for i := 0; i+1 < len(kv); i += 2 {
		cells[kv[i].(int)] = kv[i+1].(string)
	}
	return cells
}

// pageFragments lays rows out top to bottom, 10 units apart, with each cell
// placed at its column key times 5.
func pageFragments(rows ...map[int]string) []models.Fragment {
	var frags []models.Fragment
	y := 750.0
	for _, r := range rows {
		for col, text := range r {
			frags = append(frags, models.Fragment{Text: text, X: float64(col) * 5, Y: y})
		}
		y -= 10
	}
	return frags
}

// statementPage wraps body rows in the Apple Card page header and footer.
func statementPage(body ...map[int]string) []models.Fragment {
	rows := []map[int]string{
		row(7, "Statement"),
		row(7, "Apple Card Customer"),
		row(7, "Jane Appleseed", 100, "Jan 1 - Jan 31, 2020"),
	}
	rows = append(rows, body...)
	rows = append(rows,
		row(7, "Apple Card is issued by Goldman Sachs Bank USA, Salt Lake City Branch."),
		row(100, "Page 2 /3"),
	)
	return pageFragments(rows...)
}

type fakePage struct {
	frags []models.Fragment
	err   error
}

func (p fakePage) Fragments() ([]models.Fragment, error) {
	return p.frags, p.err
}

type fakeDoc struct {
	pages   []fakePage
	pageErr map[int]error
	closed  bool
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }

func (d *fakeDoc) Page(i int) (models.Page, error) {
	if err := d.pageErr[i]; err != nil {
		return nil, err
	}
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	return d.pages[i], nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func newDoc(pages ...[]models.Fragment) *fakeDoc {
	d := &fakeDoc{}
	for _, p := range pages {
		d.pages = append(d.pages, fakePage{frags: p})
	}
	return d
}

var errBroken = errors.New("broken page")
