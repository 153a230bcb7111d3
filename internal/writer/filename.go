package writer

import (
	"strings"

	"github.com/araddon/dateparse"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

const filenamePrefix = "apple_card_statement"

// Label returns the DateRange of date-sorted transactions, or "" when there
// are none.
func Label(txns []models.Transaction) string {
	if len(txns) == 0 {
		return ""
	}
	return DateRange(txns[0].Date, txns[len(txns)-1].Date)
}

// DateRange returns a label such as "January 2020" or
// "January 2020 to March 2020" for the period between two transaction
// dates. A date that cannot be parsed is used as-is.
func DateRange(start, stop string) string {
	d1 := monthLabel(start)
	d2 := monthLabel(stop)
	if d1 == d2 {
		return d1
	}
	return d1 + " to " + d2
}

func monthLabel(s string) string {
	t, err := dateparse.ParseAny(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("January 2006")
}

// Filename returns the download name for a date-range label, e.g.
// "apple_card_statement_january_2020.csv".
func Filename(label string, f Format) string {
	if label == "" {
		return filenamePrefix + f.Extension()
	}
	return filenamePrefix + "_" + strings.ToLower(strings.ReplaceAll(label, " ", "_")) + f.Extension()
}
