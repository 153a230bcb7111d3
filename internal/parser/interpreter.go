package parser

import "github.com/insightdelivered/apple-card-csv/internal/models"

// State is what the interpreter carries from one row to the next.
type State struct {
	// Type is the most recent transaction-type banner ("Payments",
	// "Transactions", ...). It survives page boundaries.
	Type string
	// Open is the transaction still collecting description lines.
	Open *models.Transaction
}

// Flush closes the open transaction, if any, and returns it.
func (s State) Flush() (State, *models.Transaction) {
	done := s.Open
	s.Open = nil
	return s, done
}

// RowKind names the decision Step took for a row.
type RowKind string

const (
	RowBanner       RowKind = "banner"
	RowNoDesc       RowKind = "no-description"
	RowContinuation RowKind = "continuation"
	RowOrphan       RowKind = "orphan-continuation"
	RowNoDate       RowKind = "no-date"
	RowTransaction  RowKind = "transaction"
)

// Step applies one classified row to the interpreter state. It returns the
// new state, the transaction closed by this row (nil if none), and the kind
// of row it saw.
//
// Rules, first match wins:
//   - a lone value outside the description column is a banner unless the
//     type column holds a date; it closes the open transaction and sets the
//     type to the type column, which may be empty;
//   - a row with no description is ignored;
//   - a row holding only a description continues the open description;
//   - a row whose date column does not parse is ignored;
//   - anything else starts a new transaction.
func Step(l Layout, s State, row Row) (State, *models.Transaction, RowKind) {
	if banner := row[l.TypeColumn]; len(row) == 1 && row[l.DescriptionColumn] == "" && !isDate(banner) {
		next, done := s.Flush()
		next.Type = banner
		return next, done, RowBanner
	}

	desc := row[l.DescriptionColumn]
	if desc == "" {
		return s, nil, RowNoDesc
	}

	if len(row) == 1 {
		if s.Open == nil {
			return s, nil, RowOrphan
		}
		open := *s.Open
		open.Description += "\n" + desc
		s.Open = &open
		return s, nil, RowContinuation
	}

	date := firstOf(row, l.DateColumns)
	if !isDate(date) {
		return s, nil, RowNoDate
	}

	next, done := s.Flush()
	next.Open = &models.Transaction{
		Date:             date,
		Type:             next.Type,
		Description:      desc,
		DailyCashPercent: firstOf(row, l.DailyCashPercentColumns),
		DailyCashAmount:  firstOf(row, l.DailyCashAmountColumns),
		Amount:           firstOf(row, l.AmountColumns),
	}
	return next, done, RowTransaction
}

// Interpret runs Step over the rows of one page and flushes the open
// transaction at the end. The banner type is returned in the state so the
// next page can continue with it.
func Interpret(l Layout, s State, rows []Row) (State, []models.Transaction) {
	return interpret(l, s, rows, nil)
}

func interpret(l Layout, s State, rows []Row, observe func(i int, row Row, kind RowKind)) (State, []models.Transaction) {
	var out []models.Transaction
	var done *models.Transaction
	var kind RowKind
	for i, row := range rows {
		s, done, kind = Step(l, s, row)
		if done != nil {
			out = append(out, *done)
		}
		if observe != nil {
			observe(i, row, kind)
		}
	}
	s, done = s.Flush()
	if done != nil {
		out = append(out, *done)
	}
	return s, out
}
