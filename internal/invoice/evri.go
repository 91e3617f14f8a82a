package invoice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// An Evri service line carries five fields:
//
//	<service name> <quantity> <unit price> <VAT code> <line value>
//
// for example:
//
//	Scottish Highlands & Islands Parcel 36 5.28 S 190.08
//
// The service name match is non-greedy, so it stops at the first point the
// numeric tail can match; the quantity and value may contain comma grouping;
// the single uppercase VAT code letter is discarded.
var evriRowPattern = regexp.MustCompile(`^\s*(.+?)\s+([\d,]+)\s+(\d+\.\d+)\s+[A-Z]\s+([\d,]+\.\d+)`)

// ClassifyEvriLine matches a single line of invoice text against the Evri
// service line shape. Headers, totals, blank lines and free text return nil.
func ClassifyEvriLine(line, sourceFile string) *ServiceLineRecord {
	m := evriRowPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	quantity, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return nil
	}

	unitPrice, err := decimal.NewFromString(m[3])
	if err != nil {
		return nil
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(m[4], ",", ""))
	if err != nil {
		return nil
	}

	return &ServiceLineRecord{
		Service:    strings.TrimSpace(m[1]),
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Value:      value,
		SourceFile: sourceFile,
		RawLine:    line,
	}
}

// ParseEvri extracts every service line from one document's text, in line
// order, tagging each record with the source file name.
func ParseEvri(text, sourceFile string) []ServiceLineRecord {
	var records []ServiceLineRecord
	for _, line := range strings.Split(text, "\n") {
		if rec := ClassifyEvriLine(line, sourceFile); rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}
