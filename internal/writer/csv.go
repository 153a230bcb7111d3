package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

// Format selects the output encoding.
type Format string

const (
	// FormatCSV quotes every value and escapes embedded quotes as \".
	// Spreadsheets importing the original tool's output expect this form.
	FormatCSV     Format = "csv"
	FormatRFC4180 Format = "rfc4180"
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatRFC4180, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: use csv, rfc4180, json or xlsx", s)
	}
}

// Extension returns the file extension for the format, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".csv"
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// EncodeCSV renders transactions as Apple Card CSV: a header of field
// names, then one line per transaction with every value wrapped in double
// quotes and inner quotes written as \". Lines are joined by "\n" with no
// trailing newline.
func EncodeCSV(txns []models.Transaction) string {
	lines := make([]string, 0, len(txns)+1)
	lines = append(lines, strings.Join(models.FieldNames, ","))

	cells := make([]string, len(models.FieldNames))
	for _, txn := range txns {
		for j, v := range txn.Values() {
			cells[j] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// Writer writes transactions in one of the supported formats.
type Writer struct {
	Format Format
}

// WriteToFile writes transactions to the file at path.
func (w *Writer) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, txns); err != nil {
		return err
	}
	return f.Close()
}

// Write writes transactions to out.
func (w *Writer) Write(out io.Writer, txns []models.Transaction) error {
	switch w.Format {
	case FormatCSV, "":
		if _, err := io.WriteString(out, EncodeCSV(txns)); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	case FormatRFC4180:
		return writeRFC4180(out, txns)
	case FormatJSON:
		return writeJSON(out, txns)
	case FormatXLSX:
		return writeXLSX(out, txns)
	default:
		return fmt.Errorf("unsupported output format %q", w.Format)
	}
}

func writeRFC4180(out io.Writer, txns []models.Transaction) error {
	if txns == nil {
		txns = []models.Transaction{}
	}
	if err := gocsv.Marshal(&txns, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func writeJSON(out io.Writer, txns []models.Transaction) error {
	if txns == nil {
		txns = []models.Transaction{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txns); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

const sheetName = "Transactions"

func writeXLSX(out io.Writer, txns []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(models.FieldNames))
	for i, name := range models.FieldNames {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	for i, txn := range txns {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address XLSX row %d: %w", i+2, err)
		}
		values := txn.Values()
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write XLSX row %d: %w", i+2, err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}
