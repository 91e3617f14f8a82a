package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/parcelops/carrier-audit/internal/invoice"
)

// Output file names. The column sets below are fixed contracts for anything
// consuming the output directory.
const (
	SummaryFile        = "summary_for_dashboard.csv"
	FedExCleanedFile   = "fedex_cleaned.csv"
	FedExAnomaliesFile = "fedex_anomalies.csv"
	EvriDespatchFile   = "evri_despatch.csv"
	EvriExtrasFile     = "evri_extras.csv"
	EvriExcludedFile   = "evri_excluded_zero_value.csv"
)

const parsedDateLayout = "2006-01-02"

// Writer renders audit tables to CSV and saves them through a Storage.
type Writer struct {
	storage Storage
}

// NewWriter creates a new Writer instance
func NewWriter(storage Storage) *Writer {
	return &Writer{storage: storage}
}

// WriteSummary writes the two-row carrier comparison table.
func (w *Writer) WriteSummary(rows []invoice.SummaryRow) error {
	records := [][]string{{
		"carrier", "despatches", "spend", "avg_cost_per_despatch",
		"fixed_rate", "variance_per_despatch", "total_difference", "status",
	}}
	for _, row := range rows {
		records = append(records, []string{
			row.Carrier,
			strconv.Itoa(row.Despatches),
			row.Spend.String(),
			row.AvgCost.String(),
			row.FixedRate.String(),
			row.Variance.String(),
			row.TotalDifference.String(),
			string(row.Status),
		})
	}
	return w.save(SummaryFile, records)
}

// WriteShipments writes a FedEx shipment table (cleaned rows or anomalies).
func (w *Writer) WriteShipments(filename string, shipments []invoice.ShipmentRecord) error {
	records := [][]string{{
		"shipment_number", "shipment_date", "shipment_date_parsed",
		"charge", "source_file", "raw_line",
	}}
	for _, rec := range shipments {
		parsed := ""
		if rec.ParsedDate != nil {
			parsed = rec.ParsedDate.Format(parsedDateLayout)
		}
		records = append(records, []string{
			rec.ShipmentNumber,
			rec.ShipmentDate,
			parsed,
			rec.Charge.String(),
			rec.SourceFile,
			rec.RawLine,
		})
	}
	return w.save(filename, records)
}

// WriteServiceLines writes an Evri service line table (despatch, extras or
// excluded bucket).
func (w *Writer) WriteServiceLines(filename string, lines []invoice.ServiceLineRecord) error {
	records := [][]string{{
		"service", "quantity", "price", "value", "source_file", "raw_line",
	}}
	for _, rec := range lines {
		records = append(records, []string{
			rec.Service,
			strconv.Itoa(rec.Quantity),
			rec.UnitPrice.String(),
			rec.Value.String(),
			rec.SourceFile,
			rec.RawLine,
		})
	}
	return w.save(filename, records)
}

func (w *Writer) save(filename string, records [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	if _, err := w.storage.Save(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s: %w", filename, err)
	}
	return nil
}
