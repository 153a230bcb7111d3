package api

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/insightdelivered/apple-card-csv/internal/models"
	"github.com/insightdelivered/apple-card-csv/internal/writer"
	"github.com/insightdelivered/apple-card-csv/pkg/applecard"
)

//go:embed static/index.html
var indexHTML []byte

// errConversion is the only conversion failure shown to clients. The cause
// is logged with the request ID.
const errConversion = "Unable to generate CSV. Please ensure you have provided an exported statement PDF and try again."

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success        bool                 `json:"success"`
	Error          string               `json:"error,omitempty"`
	RequestID      string               `json:"requestId,omitempty"`
	DateRange      string               `json:"dateRange,omitempty"`
	Filename       string               `json:"filename,omitempty"`
	CSV            string               `json:"csv,omitempty"`
	Count          int                  `json:"count"`
	Statements     int                  `json:"statements,omitempty"`
	TotalAmount    string               `json:"totalAmount,omitempty"`
	TotalDailyCash string               `json:"totalDailyCash,omitempty"`
	Transactions   []models.Transaction `json:"transactions"`
	Version        string               `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	converter *applecard.Converter
	logger    *zap.Logger
	metrics   *Metrics
	version   string
}

// NewHandler returns a Handler. metrics may be nil to disable /metrics.
func NewHandler(converter *applecard.Converter, logger *zap.Logger, metrics *Metrics, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		converter: converter,
		logger:    logger,
		metrics:   metrics,
		version:   version,
	}
}

// NewApp builds the fiber app serving h. bodyLimit caps the upload size in
// bytes.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "apple-card-csv",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New())
	app.Use(cors.New())
	app.Use(h.logRequest)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/", h.HandleIndex)
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
	if h.metrics != nil {
		app.Get("/metrics", h.metrics.Handler())
	}
}

func (h *Handler) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

// HandleIndex serves the drag-and-drop upload page.
func (h *Handler) HandleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.version,
	})
}

// HandleConvert converts the PDFs uploaded under the "file" field. By
// default it answers with JSON carrying the CSV text; with download=true it
// sends the file itself, encoded per the optional format field.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	start := time.Now()
	requestID := uuid.NewString()
	log := h.logger.With(zap.String("request_id", requestID))
	c.Set("X-Request-Id", requestID)

	format, err := writer.ParseFormat(c.FormValue("format"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, requestID, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, requestID, "No file uploaded. Use form field 'file'.")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return writeError(c, fiber.StatusBadRequest, requestID, "No file uploaded. Use form field 'file'.")
	}

	srcs := make([][]byte, 0, len(files))
	for _, fh := range files {
		if !isPDF(fh) {
			return writeError(c, fiber.StatusBadRequest, requestID,
				fmt.Sprintf("Unable to load file: %s. Invalid file type. Please ensure you have provided an exported statement PDF and try again.", fh.Filename))
		}
		data, err := readUpload(fh)
		if err != nil {
			log.Warn("failed to read upload", zap.String("file", fh.Filename), zap.Error(err))
			return writeError(c, fiber.StatusBadRequest, requestID,
				fmt.Sprintf("Unable to load file: %s. Please ensure you have provided an exported statement PDF and try again.", fh.Filename))
		}
		srcs = append(srcs, data)
	}

	res, err := h.converter.Parse(srcs...)
	if err != nil {
		log.Warn("conversion failed", zap.Int("files", len(srcs)), zap.Error(err))
		h.metrics.observe("error", 0, time.Since(start))
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, applecard.ErrInvalidArgument) {
			status = fiber.StatusBadRequest
		}
		return writeError(c, status, requestID, errConversion)
	}

	txns := res.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}
	label := writer.Label(txns)
	h.metrics.observe("success", len(txns), time.Since(start))
	log.Info("converted statements",
		zap.Int("files", len(srcs)),
		zap.Int("transactions", len(txns)),
		zap.String("date_range", label))

	if c.FormValue("download") == "true" {
		var buf bytes.Buffer
		w := &writer.Writer{Format: format}
		if err := w.Write(&buf, txns); err != nil {
			log.Error("failed to encode download", zap.Error(err))
			return writeError(c, fiber.StatusInternalServerError, requestID, errConversion)
		}
		c.Attachment(writer.Filename(label, format))
		c.Set(fiber.HeaderContentType, format.ContentType())
		return c.Send(buf.Bytes())
	}

	amount, cash := totals(txns)
	return c.JSON(ConvertResponse{
		Success:        true,
		RequestID:      requestID,
		DateRange:      label,
		Filename:       writer.Filename(label, writer.FormatCSV),
		CSV:            writer.EncodeCSV(txns),
		Count:          len(txns),
		Statements:     len(res.Statements),
		TotalAmount:    amount.StringFixed(2),
		TotalDailyCash: cash.StringFixed(2),
		Transactions:   txns,
		Version:        h.version,
	})
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return true
	}
	return strings.HasPrefix(fh.Header.Get("Content-Type"), "application/pdf")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// totals sums the amount and Daily Cash columns. Values that are not money
// are left out.
func totals(txns []models.Transaction) (amount, cash decimal.Decimal) {
	for _, txn := range txns {
		if v, ok := parseMoney(txn.Amount); ok {
			amount = amount.Add(v)
		}
		if v, ok := parseMoney(txn.DailyCashAmount); ok {
			cash = cash.Add(v)
		}
	}
	return amount, cash
}

// parseMoney reads statement amounts such as "$1,200.00", "-$5.00" and
// "($5.00)".
func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
	s = strings.Trim(s, "-()$ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		v = v.Neg()
	}
	return v, true
}

func writeError(c *fiber.Ctx, status int, requestID, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:   false,
		Error:     msg,
		RequestID: requestID,
	})
}
