package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/apple-card-csv/internal/api"
	"github.com/insightdelivered/apple-card-csv/internal/config"
	"github.com/insightdelivered/apple-card-csv/internal/logging"
	"github.com/insightdelivered/apple-card-csv/internal/writer"
	"github.com/insightdelivered/apple-card-csv/pkg/applecard"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	// CLI flags
	outputFlag := flag.String("output", "", "Output file path, or - for stdout (defaults to input name, or the statement period when merging)")
	formatFlag := flag.String("format", "csv", "Output format: csv, rfc4180, json, xlsx")
	layoutFlag := flag.String("layout", cfg.LayoutFile, "YAML file overriding the statement column layout")
	debugFlag := flag.Bool("debug", cfg.Debug, "Log row-by-row parsing diagnostics to stderr")
	serveFlag := flag.Bool("serve", false, "Start the web converter instead of converting files")
	addrFlag := flag.String("addr", cfg.Addr, "Listen address for -serve")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Apple Card Statement PDF to CSV Converter

Converts exported Apple Card statement PDFs into a CSV of transactions.
Several statements are merged into one file, sorted by date.

Usage:
  apple-card-csv [flags] <statement.pdf> [statement2.pdf ...]
  apple-card-csv -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert one statement to january.csv
  apple-card-csv january.pdf

  # Merge a quarter into apple_card_statement_january_2020_to_march_2020.csv
  apple-card-csv january.pdf february.pdf march.pdf

  # Write a spreadsheet instead
  apple-card-csv -format=xlsx -output=2020.xlsx *.pdf

  # Pipe CSV into another tool
  apple-card-csv -output=- january.pdf | column -s, -t

Environment:
  APPLECARD_ADDR, APPLECARD_MAX_UPLOAD_MB, APPLECARD_LAYOUT_FILE,
  APPLECARD_DEBUG, APPLECARD_METRICS (also read from .env)
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("apple-card-csv v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (flag.NArg() == 0 && !*serveFlag) {
		flag.Usage()
		os.Exit(0)
	}

	format, err := writer.ParseFormat(*formatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	// The server always logs; the CLI only logs when debugging.
	logger, err := logging.New(*debugFlag || *serveFlag, *debugFlag)
	if err != nil {
		fatalf("Failed to initialise logger: %v\n", err)
	}
	defer logger.Sync()

	opts := []applecard.Option{applecard.WithLogger(logger)}
	if *layoutFlag != "" {
		layout, err := applecard.LoadLayout(*layoutFlag)
		if err != nil {
			fatalf("Invalid layout file %s: %v\n", *layoutFlag, err)
		}
		opts = append(opts, applecard.WithLayout(layout))
	}
	converter := applecard.New(opts...)

	if *serveFlag {
		var metrics *api.Metrics
		if cfg.MetricsEnabled {
			metrics = api.NewMetrics()
		}
		h := api.NewHandler(converter, logger, metrics, version)
		if err := serve(*addrFlag, api.NewApp(h, cfg.MaxUploadMB<<20), logger); err != nil {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := convertFiles(converter, flag.Args(), *outputFlag, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// convertFiles merges the statements at inputPaths into one output file.
func convertFiles(converter *applecard.Converter, inputPaths []string, outputPath string, format writer.Format) error {
	// Keep stdout clean when it carries the result.
	progress := io.Writer(os.Stdout)
	if outputPath == "-" {
		progress = os.Stderr
	}

	srcs := make([][]byte, 0, len(inputPaths))
	for _, inputPath := range inputPaths {
		data, err := readStatement(inputPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(progress, "Reading: %s\n", inputPath)
		srcs = append(srcs, data)
	}

	res, err := converter.Parse(srcs...)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	for i, info := range res.Statements {
		fmt.Fprintf(progress, "  %s: %d page(s), %d transaction(s)\n", inputPaths[i], info.Pages, len(info.Transactions))
		if len(info.SkippedPages) > 0 {
			fmt.Fprintf(progress, "  Warning: skipped unrecognised page(s) %v\n", oneBased(info.SkippedPages))
		}
	}

	label := writer.Label(res.Transactions)
	if label != "" {
		fmt.Fprintf(progress, "  Period: %s\n", label)
	}
	fmt.Fprintf(progress, "  Found %d transaction(s)\n", len(res.Transactions))

	if len(res.Transactions) == 0 {
		fmt.Fprintln(progress, "  Warning: No transactions found. Make sure the PDF is an exported Apple Card statement.")
	}

	w := &writer.Writer{Format: format}
	if outputPath == "-" {
		return w.Write(os.Stdout, res.Transactions)
	}

	outPath := defaultOutputPath(inputPaths, outputPath, label, format)
	if err := w.WriteToFile(outPath, res.Transactions); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	fmt.Fprintf(progress, "  Output: %s\n", outPath)
	fmt.Fprintln(progress, "  Done.")
	return nil
}

func readStatement(inputPath string) ([]byte, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return nil, fmt.Errorf("expected .pdf file, got %q", ext)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	return data, nil
}

// defaultOutputPath picks the output file: an explicit path wins, a single
// input keeps its name with the format's extension, and merged inputs are
// named after the statement period.
func defaultOutputPath(inputPaths []string, outputPath, label string, format writer.Format) string {
	if outputPath != "" {
		return outputPath
	}
	if len(inputPaths) == 1 {
		base := strings.TrimSuffix(inputPaths[0], filepath.Ext(inputPaths[0]))
		return base + format.Extension()
	}
	return writer.Filename(label, format)
}

func oneBased(pages []int) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p + 1
	}
	return out
}

func serve(addr string, app *fiber.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	logger.Info("listening", zap.String("addr", addr), zap.String("version", version))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
