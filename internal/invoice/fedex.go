package invoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// A FedEx shipment row starts with the shipment number and despatch date,
// for example:
//
//	283619204591 13/10/2025 FedEx Priority ... 2.99 17.10
//
// The shipment number is at least nine digits and must be anchored at the
// very start of the line. The charge is the last decimal value on the line;
// earlier decimals are weights, unit rates or surcharges.
var (
	fedexRowPattern = regexp.MustCompile(`^(\d{9,})\s+(\d{2}/\d{2}/\d{4})`)
	decimalToken    = regexp.MustCompile(`\d+\.\d+`)
)

const fedexDateLayout = "02/01/2006"

// ClassifyFedExLine matches a single line of invoice text against the FedEx
// shipment row shape. It returns nil for the (majority) lines that are not
// shipment rows: headers, address blocks, totals, page furniture.
//
// A line with a valid shipment-number/date prefix but no decimal value
// anywhere is also dropped; those are continuation or malformed lines, not
// billable rows.
func ClassifyFedExLine(line, sourceFile string) *ShipmentRecord {
	m := fedexRowPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	nums := decimalToken.FindAllString(line, -1)
	if len(nums) == 0 {
		return nil
	}

	charge, err := decimal.NewFromString(nums[len(nums)-1])
	if err != nil {
		return nil
	}

	rec := &ShipmentRecord{
		ShipmentNumber: m[1],
		ShipmentDate:   m[2],
		Charge:         charge,
		SourceFile:     sourceFile,
		RawLine:        line,
	}

	// The raw date string is kept either way; a date that does not parse as
	// dd/mm/yyyy (e.g. 31/02/2025) just leaves ParsedDate unset.
	if d, err := time.Parse(fedexDateLayout, m[2]); err == nil {
		rec.ParsedDate = &d
	}

	return rec
}

// ParseFedEx extracts every shipment row from one document's text, in line
// order, tagging each record with the source file name.
func ParseFedEx(text, sourceFile string) []ShipmentRecord {
	var records []ShipmentRecord
	for _, line := range strings.Split(text, "\n") {
		if rec := ClassifyFedExLine(line, sourceFile); rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// Anomalies returns the shipment records with a zero or negative charge,
// flagged for manual review.
func Anomalies(records []ShipmentRecord) []ShipmentRecord {
	var out []ShipmentRecord
	for _, rec := range records {
		if rec.Charge.Sign() <= 0 {
			out = append(out, rec)
		}
	}
	return out
}
