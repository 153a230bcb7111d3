package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

// StatementParser turns a decoded Apple Card statement into transactions.
// It holds no per-document state, so one parser may serve many documents.
type StatementParser struct {
	layout Layout
	logger *zap.Logger
}

// New returns a parser for the given layout. A nil logger disables
// diagnostics.
func New(l Layout, logger *zap.Logger) (*StatementParser, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementParser{layout: l, logger: logger}, nil
}

// Parse walks the pages of doc in order, skipping the cover pages, and
// collects the transactions of every statement page. Pages that are not
// statement pages are skipped silently. A failure to read any page aborts
// the whole document.
func (p *StatementParser) Parse(doc models.Document) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Pages: doc.NumPage()}
	var state State

	for i := p.layout.SkipPages; i < info.Pages; i++ {
		log := p.logger.With(zap.Int("page", i))

		page, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		frags, err := page.Fragments()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		log.Debug("extracted page text", zap.Int("fragments", len(frags)))

		rows := Bucket(frags, p.layout.ColumnWidth)
		body, ok := Classify(rows, p.layout)
		if !ok {
			log.Debug("not a statement page, skipping", zap.Int("rows", len(rows)))
			info.SkippedPages = append(info.SkippedPages, i)
			continue
		}
		info.StatementPages++

		var txns []models.Transaction
		state, txns = p.interpret(log, state, body)
		info.Transactions = append(info.Transactions, txns...)
		log.Debug("processed page", zap.Int("rows", len(body)), zap.Int("transactions", len(txns)))
	}
	return info, nil
}

func (p *StatementParser) interpret(log *zap.Logger, s State, rows []Row) (State, []models.Transaction) {
	return interpret(p.layout, s, rows, func(i int, row Row, kind RowKind) {
		if ce := log.Check(zap.DebugLevel, "row"); ce != nil {
			ce.Write(zap.Int("row", i), zap.String("kind", string(kind)), zap.Any("columns", row))
		}
	})
}
