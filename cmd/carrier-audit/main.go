package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"github.com/parcelops/carrier-audit/internal/audit"
	"github.com/parcelops/carrier-audit/internal/document"
	"github.com/parcelops/carrier-audit/internal/invoice"
	"github.com/parcelops/carrier-audit/internal/report"
	"github.com/parcelops/carrier-audit/internal/runlog"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("carrier-audit")
	var (
		fedexPaths  = fs.StringLong("fedex", "", "Comma-separated FedEx invoice PDF paths (required)")
		evriPaths   = fs.StringLong("evri", "", "Comma-separated Evri invoice PDF paths (required)")
		outDir      = fs.StringLong("outdir", "output", "Output folder for CSV files")
		dbPath      = fs.StringLong("db", "carrier-audit.db", "Run history database file path")
		fedexRate   = fs.StringLong("fedex-rate", "3.10", "Fixed contractual rate per FedEx despatch")
		evriRate    = fs.StringLong("evri-rate", "2.44", "Fixed contractual rate per Evri despatch")
		concurrency = fs.IntLong("concurrency", 4, "Documents extracted in parallel")
		ocrType     = fs.StringLong("ocr", "off", "OCR fallback for scanned invoices: 'off', 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CARRIER_AUDIT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *fedexPaths == "" || *evriPaths == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --fedex and --evri are required")
		os.Exit(1)
	}

	fedexFixed, err := decimal.NewFromString(*fedexRate)
	if err != nil {
		slog.Error("Invalid FedEx rate", "rate", *fedexRate, "error", err)
		os.Exit(1)
	}
	evriFixed, err := decimal.NewFromString(*evriRate)
	if err != nil {
		slog.Error("Invalid Evri rate", "rate", *evriRate, "error", err)
		os.Exit(1)
	}

	// Initialize the document extractor, with OCR fallback if requested
	extractor, err := buildExtractor(*ocrType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize run history
	slog.Info("Initializing run history...")
	db, err := runlog.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize run history", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize report output
	storage, err := report.NewLocalStorage(*outDir)
	if err != nil {
		slog.Error("Failed to initialize output directory", "error", err)
		os.Exit(1)
	}

	service := audit.NewService(extractor, report.NewWriter(storage), db)

	result, err := service.Run(context.Background(), audit.Request{
		FedExPaths:  splitPaths(*fedexPaths),
		EvriPaths:   splitPaths(*evriPaths),
		FedExRate:   fedexFixed,
		EvriRate:    evriFixed,
		Concurrency: *concurrency,
	})
	if err != nil {
		slog.Error("Audit failed", "error", err)
		os.Exit(1)
	}

	printSummary(result)
	fmt.Printf("\nFiles written to: %s\n", *outDir)
}

// buildExtractor wires the native text-layer extractor, optionally chained
// with an OCR transcriber for scanned invoices.
func buildExtractor(ocrType, geminiKey, geminiModel, ollamaURL, ollamaModel string) (document.Extractor, error) {
	native := document.NewFitzExtractor()

	switch ocrType {
	case "off", "":
		return native, nil
	case "gemini":
		apiKey := geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key flag or GEMINI_API_KEY environment variable")
		}
		slog.Info("Initializing Gemini OCR fallback...", "model", geminiModel)
		ocr, err := document.NewGeminiExtractor(apiKey, geminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return document.NewFallbackExtractor(native, ocr), nil
	case "ollama":
		slog.Info("Initializing Ollama OCR fallback...", "url", ollamaURL, "model", ollamaModel)
		ocr, err := document.NewOllamaExtractor(ollamaURL, ollamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama: %w", err)
		}
		return document.NewFallbackExtractor(native, ocr), nil
	default:
		return nil, fmt.Errorf("invalid ocr type %q: valid values are off, gemini or ollama", ocrType)
	}
}

func splitPaths(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func printSummary(result *audit.Result) {
	fmt.Println("Summary:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "carrier\tdespatches\tspend\tavg_cost\tfixed_rate\tvariance\ttotal_difference\tstatus")
	for _, row := range result.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Carrier, row.Despatches, row.Spend, row.AvgCost,
			row.FixedRate, row.Variance, row.TotalDifference, row.Status)
	}
	tw.Flush()

	for _, row := range result.Summary {
		if row.Status == invoice.StatusNoData {
			continue
		}
		label, amount := invoice.Impact(row.TotalDifference)
		fmt.Printf("%s: %s of %s against the fixed rate\n", row.Carrier, label, amount)
	}
}
