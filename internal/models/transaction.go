package models

// Transaction represents a single Apple Card statement transaction.
// Values are copied verbatim from the statement text; nothing is reformatted.
type Transaction struct {
	Date             string `json:"date" csv:"Date"`
	Type             string `json:"type,omitempty" csv:"Type"` // banner above the row, e.g. "Payments"
	Description      string `json:"description" csv:"Description"`
	DailyCashPercent string `json:"dailyCashPercent,omitempty" csv:"Daily Cash (%)"`
	DailyCashAmount  string `json:"dailyCashAmount,omitempty" csv:"Daily Cash ($)"`
	Amount           string `json:"amount" csv:"Amount"`
}

// FieldNames lists output column names in record key order.
var FieldNames = []string{
	"Date",
	"Type",
	"Description",
	"Daily Cash (%)",
	"Daily Cash ($)",
	"Amount",
}

// Values returns the transaction fields in FieldNames order.
func (t Transaction) Values() []string {
	return []string{
		t.Date,
		t.Type,
		t.Description,
		t.DailyCashPercent,
		t.DailyCashAmount,
		t.Amount,
	}
}

// StatementInfo holds what was recovered from one statement document.
type StatementInfo struct {
	Pages          int
	StatementPages int
	SkippedPages   []int // zero-based indexes of pages that failed classification
	Transactions   []Transaction
}
