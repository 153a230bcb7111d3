package writer

import (
	"testing"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

func TestDateRange(t *testing.T) {
	tests := []struct {
		start, stop string
		expected    string
	}{
		{"01/02/2020", "01/28/2020", "January 2020"},
		{"2020-01-15", "2020-03-01", "January 2020 to March 2020"},
		{"12/30/2019", "01/02/2020", "December 2019 to January 2020"},
	}

	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.stop, func(t *testing.T) {
			got := DateRange(tt.start, tt.stop)
			if got != tt.expected {
				t.Errorf("DateRange(%q, %q): got %q, want %q", tt.start, tt.stop, got, tt.expected)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		label    string
		format   Format
		expected string
	}{
		{"January 2020", FormatCSV, "apple_card_statement_january_2020.csv"},
		{"January 2020 to March 2020", FormatCSV, "apple_card_statement_january_2020_to_march_2020.csv"},
		{"January 2020", FormatXLSX, "apple_card_statement_january_2020.xlsx"},
		{"", FormatJSON, "apple_card_statement.json"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := Filename(tt.label, tt.format)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Label(nil); got != "" {
		t.Errorf("Label(nil): got %q, want empty", got)
	}

	txns := []models.Transaction{{Date: "01/03/2020"}, {Date: "01/20/2020"}, {Date: "02/01/2020"}}
	if got := Label(txns); got != "January 2020 to February 2020" {
		t.Errorf("got %q", got)
	}
}
