// Package applecard converts Apple Card PDF statements into CSV.
//
//	data, _ := os.ReadFile("statement.pdf")
//	csv, err := applecard.Convert(data)
//
// Several statements may be passed at once; their transactions are merged
// and sorted by date.
package applecard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/insightdelivered/apple-card-csv/internal/extractor"
	"github.com/insightdelivered/apple-card-csv/internal/models"
	"github.com/insightdelivered/apple-card-csv/internal/parser"
	"github.com/insightdelivered/apple-card-csv/internal/writer"
)

// ErrInvalidArgument is returned before any decoding when the input is not
// one or more non-empty statement buffers.
var ErrInvalidArgument = errors.New("invalid argument")

type (
	Transaction   = models.Transaction
	StatementInfo = models.StatementInfo
	Document      = models.Document
	Page          = models.Page
	Fragment      = models.Fragment
	Layout        = parser.Layout
)

// OpenFunc decodes one statement buffer.
type OpenFunc func(data []byte) (Document, error)

// DefaultLayout returns the column layout of the Apple Card statement.
func DefaultLayout() Layout { return parser.DefaultLayout() }

// LoadLayout reads a YAML layout override file.
func LoadLayout(path string) (Layout, error) { return parser.LoadLayout(path) }

// Converter converts statements. It only holds configuration, so a single
// Converter may be used from several goroutines.
type Converter struct {
	open   OpenFunc
	layout Layout
	logger *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the diagnostic logger. Diagnostics are off by default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLayout overrides the statement column layout.
func WithLayout(l Layout) Option {
	return func(c *Converter) {
		c.layout = l
	}
}

// WithOpener replaces the PDF decoder.
func WithOpener(open OpenFunc) Option {
	return func(c *Converter) {
		if open != nil {
			c.open = open
		}
	}
}

// New returns a Converter using ledongthuc/pdf and the default layout.
func New(opts ...Option) *Converter {
	c := &Converter{
		open:   extractor.OpenDocument,
		layout: parser.DefaultLayout(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts statements with a default Converter.
func Convert(srcs ...[]byte) (string, error) {
	return New().Convert(srcs...)
}

// Convert parses every statement in order and returns the merged
// transactions as CSV. The first failing statement aborts the conversion.
func (c *Converter) Convert(srcs ...[]byte) (string, error) {
	txns, err := c.Records(srcs...)
	if err != nil {
		return "", err
	}
	c.logger.Debug("generating CSV", zap.Int("transactions", len(txns)))
	return writer.EncodeCSV(txns), nil
}

// Result is the outcome of a conversion before encoding.
type Result struct {
	Transactions []Transaction
	Statements   []StatementInfo
}

// Records parses every statement in order and returns the merged
// transactions sorted by date. Transactions sharing a date keep the order
// they were found in.
func (c *Converter) Records(srcs ...[]byte) ([]Transaction, error) {
	res, err := c.Parse(srcs...)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// Parse is Records with per-statement details.
func (c *Converter) Parse(srcs ...[]byte) (*Result, error) {
	if err := validate(srcs); err != nil {
		return nil, err
	}
	p, err := parser.New(c.layout, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	c.logger.Debug("converting statements", zap.Int("statements", len(srcs)))

	res := &Result{}
	for i, src := range srcs {
		info, err := c.parseOne(p, i, src)
		if err != nil {
			c.logger.Debug("statement failed", zap.Int("statement", i), zap.Error(err))
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		res.Statements = append(res.Statements, *info)
		res.Transactions = append(res.Transactions, info.Transactions...)
	}

	SortByDate(res.Transactions)
	return res, nil
}

func (c *Converter) parseOne(p *parser.StatementParser, i int, src []byte) (*models.StatementInfo, error) {
	log := c.logger.With(zap.Int("statement", i))
	log.Debug("loading statement", zap.Int("bytes", len(src)))

	doc, err := c.open(src)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	info, err := p.Parse(doc)
	if err != nil {
		return nil, err
	}
	log.Debug("processed statement",
		zap.Int("pages", info.Pages),
		zap.Int("statement_pages", info.StatementPages),
		zap.Int("transactions", len(info.Transactions)))
	return info, nil
}

func validate(srcs [][]byte) error {
	if len(srcs) == 0 {
		return fmt.Errorf("%w: at least one statement is required", ErrInvalidArgument)
	}
	for i, src := range srcs {
		if len(src) == 0 {
			return fmt.Errorf("%w: statement %d is empty", ErrInvalidArgument, i)
		}
	}
	return nil
}

// SortByDate stably sorts transactions by their parsed date. Dates that do
// not parse sort first.
func SortByDate(txns []Transaction) {
	keys := make([]time.Time, len(txns))
	for i, t := range txns {
		keys[i], _ = parser.ParseDate(t.Date)
	}
	sort.Stable(byDate{txns: txns, keys: keys})
}

type byDate struct {
	txns []Transaction
	keys []time.Time
}

func (b byDate) Len() int           { return len(b.txns) }
func (b byDate) Less(i, j int) bool { return b.keys[i].Before(b.keys[j]) }
func (b byDate) Swap(i, j int) {
	b.txns[i], b.txns[j] = b.txns[j], b.txns[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
