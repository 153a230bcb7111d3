package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout holds the page geometry of the Apple Card statement template.
//
// Column keys are x positions divided by ColumnWidth and rounded. They were
// measured on one version of the exported statement PDF; if Apple moves the
// columns, override them with a layout file instead of patching the parser.
type Layout struct {
	ColumnWidth float64 `yaml:"column_width"`
	SkipPages   int     `yaml:"skip_pages"` // leading pages never classified (cover)

	HeaderRows    int      `yaml:"header_rows"`
	FooterRows    int      `yaml:"footer_rows"`
	HeaderMarkers []string `yaml:"header_markers"` // lower-case, one per header row

	TypeColumn              int   `yaml:"type_column"`
	DateColumns             []int `yaml:"date_columns"`
	DescriptionColumn       int   `yaml:"description_column"`
	DailyCashPercentColumns []int `yaml:"daily_cash_percent_columns"`
	DailyCashAmountColumns  []int `yaml:"daily_cash_amount_columns"`
	AmountColumns           []int `yaml:"amount_columns"` // the amount drifts with description width
}

// DefaultLayout returns the column keys of the observed Apple Card template.
func DefaultLayout() Layout {
	return Layout{
		ColumnWidth:             5,
		SkipPages:               1,
		HeaderRows:              3,
		FooterRows:              2,
		HeaderMarkers:           []string{"statement", "apple card customer"},
		TypeColumn:              7,
		DateColumns:             []int{9, 7},
		DescriptionColumn:       21,
		DailyCashPercentColumns: []int{85, 83},
		DailyCashAmountColumns:  []int{89},
		AmountColumns:           []int{111, 110, 109, 108, 107},
	}
}

// LoadLayout reads a YAML layout file. Keys missing from the file keep
// their DefaultLayout values.
func LoadLayout(path string) (Layout, error) {
	l := DefaultLayout()
	data, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("failed to read layout file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("failed to parse layout file %q: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("layout file %q: %w", path, err)
	}
	return l, nil
}

// Validate reports layouts the interpreter cannot work with.
func (l Layout) Validate() error {
	if l.ColumnWidth <= 0 {
		return fmt.Errorf("column_width must be positive, got %v", l.ColumnWidth)
	}
	if l.SkipPages < 0 || l.HeaderRows < 0 || l.FooterRows < 0 {
		return fmt.Errorf("skip_pages, header_rows and footer_rows must not be negative")
	}
	if len(l.HeaderMarkers) > l.HeaderRows {
		return fmt.Errorf("%d header markers for %d header rows", len(l.HeaderMarkers), l.HeaderRows)
	}
	if len(l.DateColumns) == 0 || len(l.AmountColumns) == 0 {
		return fmt.Errorf("date_columns and amount_columns must not be empty")
	}
	return nil
}
