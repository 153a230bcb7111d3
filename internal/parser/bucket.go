package parser

import (
	"sort"
	"strings"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

// Row maps a quantized x position (column key) to the text found there.
type Row map[int]string

// First returns the value with the smallest column key.
func (r Row) First() (string, bool) {
	if len(r) == 0 {
		return "", false
	}
	lowest := 0
	found := false
	for k := range r {
		if !found || k < lowest {
			lowest = k
			found = true
		}
	}
	return r[lowest], true
}

// Bucket groups page fragments into rows of columns.
//
// x is divided by columnWidth and rounded so that small horizontal jitter
// lands in the same column; y is rounded to the nearest unit, since cells of
// one row share a baseline. PDF y grows upwards, so rows come back with the
// largest y first, which is top-of-page reading order.
func Bucket(frags []models.Fragment, columnWidth float64) []Row {
	byY := make(map[int]Row)
	for _, f := range frags {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		col := roundHalfUp(f.X / columnWidth)
		y := roundHalfUp(f.Y)
		row, ok := byY[y]
		if !ok {
			row = make(Row)
			byY[y] = row
		}
		row[col] = text
	}

	keys := make([]int, 0, len(byY))
	for y := range byY {
		keys = append(keys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	rows := make([]Row, 0, len(keys))
	for _, y := range keys {
		rows = append(rows, byY[y])
	}
	return rows
}
