package parser

import "strings"

// Classify strips the footer and header of a statement page and returns the
// rows in between. ok is false when the page is not a statement page: too
// few rows, or a header row that does not carry its marker text. Cover and
// summary pages have no such header.
func Classify(rows []Row, l Layout) (body []Row, ok bool) {
	if len(rows) < l.HeaderRows {
		return nil, false
	}
	end := len(rows) - l.FooterRows
	if end < 0 {
		end = 0
	}
	rows = rows[:end]

	for i, marker := range l.HeaderMarkers {
		if i >= len(rows) {
			return nil, false
		}
		v, found := rows[i].First()
		if !found || strings.ToLower(v) != marker {
			return nil, false
		}
	}
	if len(rows) <= l.HeaderRows {
		return []Row{}, true
	}
	return rows[l.HeaderRows:], true
}
