package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/parcelops/carrier-audit/internal/document"
	"github.com/parcelops/carrier-audit/internal/invoice"
	"github.com/parcelops/carrier-audit/internal/report"
	"github.com/parcelops/carrier-audit/internal/runlog"
)

// FileSource reads input documents by path
type FileSource interface {
	ReadFile(path string) ([]byte, error)
}

// IDGenerator generates unique IDs for run records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type osFileSource struct{}

func (osFileSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Request describes one audit run.
type Request struct {
	FedExPaths []string
	EvriPaths  []string
	FedExRate  decimal.Decimal
	EvriRate   decimal.Decimal
	// Concurrency bounds parallel document extraction; values below 1 mean
	// one document at a time.
	Concurrency int
}

// Result holds every table an audit run produces.
type Result struct {
	FedExRecords   []invoice.ShipmentRecord
	FedExAnomalies []invoice.ShipmentRecord
	EvriDespatch   []invoice.ServiceLineRecord
	EvriExtras     []invoice.ServiceLineRecord
	EvriExcluded   []invoice.ServiceLineRecord
	FedExMetrics   invoice.Metrics
	EvriMetrics    invoice.Metrics
	Summary        []invoice.SummaryRow
	Warnings       []string
}

// Service runs carrier invoice audits
type Service struct {
	extractor   document.Extractor
	reports     *report.Writer
	runs        runlog.DB
	files       FileSource
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default file source, ID generator and
// time source
func NewService(extractor document.Extractor, reports *report.Writer, runs runlog.DB) *Service {
	return &Service{
		extractor:   extractor,
		reports:     reports,
		runs:        runs,
		files:       osFileSource{},
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(extractor document.Extractor, reports *report.Writer, runs runlog.DB, files FileSource, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		extractor:   extractor,
		reports:     reports,
		runs:        runs,
		files:       files,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Run audits one batch of carrier invoices: extracts text from every input
// document, classifies and categorizes the billed lines, computes per-carrier
// metrics, writes the report tables and records the run.
//
// A document that cannot be read or extracted is skipped with a warning and
// the batch continues. A carrier yielding zero records across all of its
// documents aborts the run before any output is written.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	started := s.timeSource.Now()
	result := &Result{}

	fedexTexts, warnings := s.extractAll(ctx, req.FedExPaths, req.Concurrency)
	result.Warnings = append(result.Warnings, warnings...)

	evriTexts, warnings := s.extractAll(ctx, req.EvriPaths, req.Concurrency)
	result.Warnings = append(result.Warnings, warnings...)

	for _, doc := range fedexTexts {
		result.FedExRecords = append(result.FedExRecords, invoice.ParseFedEx(doc.text, doc.name)...)
	}
	var evriRecords []invoice.ServiceLineRecord
	for _, doc := range evriTexts {
		evriRecords = append(evriRecords, invoice.ParseEvri(doc.text, doc.name)...)
	}

	if len(result.FedExRecords) == 0 {
		return nil, fmt.Errorf("no FedEx shipment rows found in any input document")
	}
	if len(evriRecords) == 0 {
		return nil, fmt.Errorf("no Evri service lines found in any input document")
	}

	core, excluded := invoice.SplitZeroValue(evriRecords)
	despatch, extras := invoice.SplitDespatch(core)
	result.EvriDespatch = despatch
	result.EvriExtras = extras
	result.EvriExcluded = excluded

	result.FedExAnomalies = invoice.Anomalies(result.FedExRecords)
	result.FedExMetrics = invoice.FedExMetrics(result.FedExRecords, req.FedExRate)

	fuel := invoice.FuelSurchargeTotal(extras)
	result.EvriMetrics = invoice.EvriMetrics(despatch, fuel, req.EvriRate)

	result.Summary = invoice.BuildSummary(result.FedExMetrics, result.EvriMetrics)

	if err := s.writeReports(result); err != nil {
		return nil, err
	}

	run := &runlog.Run{
		ID:         s.idGenerator.Generate(),
		StartedAt:  started,
		FinishedAt: s.timeSource.Now(),
		FedExFiles: baseNames(req.FedExPaths),
		EvriFiles:  baseNames(req.EvriPaths),
		FedEx:      result.FedExMetrics,
		Evri:       result.EvriMetrics,
		Warnings:   result.Warnings,
	}
	if err := s.runs.SaveRun(run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	return result, nil
}

// documentText is one document's extracted text, tagged with its source name.
type documentText struct {
	name string
	text string
}

// extractAll reads and extracts every document, skipping failures with a
// warning. Extraction may run concurrently, but the returned slice is always
// in input path order.
func (s *Service) extractAll(ctx context.Context, paths []string, concurrency int) ([]documentText, []string) {
	if concurrency < 1 {
		concurrency = 1
	}

	type slot struct {
		doc     *documentText
		warning string
	}
	slots := make([]slot, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			data, err := s.files.ReadFile(path)
			if err != nil {
				slots[i].warning = fmt.Sprintf("skipping %s: %v", path, err)
				return nil
			}
			text, err := s.extractor.ExtractText(gCtx, data, "application/pdf")
			if err != nil {
				slots[i].warning = fmt.Sprintf("skipping %s: %v", path, err)
				return nil
			}
			slots[i].doc = &documentText{name: filepath.Base(path), text: text}
			return nil
		})
	}
	_ = g.Wait() // extraction failures surface as warnings, never errors

	var docs []documentText
	var warnings []string
	for _, sl := range slots {
		if sl.warning != "" {
			slog.Warn("Skipping input document", "reason", sl.warning)
			warnings = append(warnings, sl.warning)
			continue
		}
		docs = append(docs, *sl.doc)
	}
	return docs, warnings
}

func (s *Service) writeReports(result *Result) error {
	if err := s.reports.WriteSummary(result.Summary); err != nil {
		return err
	}
	if err := s.reports.WriteShipments(report.FedExCleanedFile, result.FedExRecords); err != nil {
		return err
	}
	if err := s.reports.WriteShipments(report.FedExAnomaliesFile, result.FedExAnomalies); err != nil {
		return err
	}
	if err := s.reports.WriteServiceLines(report.EvriDespatchFile, result.EvriDespatch); err != nil {
		return err
	}
	if err := s.reports.WriteServiceLines(report.EvriExtrasFile, result.EvriExtras); err != nil {
		return err
	}
	return s.reports.WriteServiceLines(report.EvriExcludedFile, result.EvriExcluded)
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}
