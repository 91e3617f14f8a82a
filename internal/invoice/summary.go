package invoice

import "github.com/shopspring/decimal"

// Carrier labels used in the summary table.
const (
	CarrierFedEx = "FedEx"
	CarrierEvri  = "Evri outbound"
)

// SummaryRow is one carrier's line in the comparison table.
type SummaryRow struct {
	Carrier string `json:"carrier"`
	Metrics
}

// BuildSummary assembles the two-carrier comparison table, FedEx first.
func BuildSummary(fedex, evri Metrics) []SummaryRow {
	return []SummaryRow{
		{Carrier: CarrierFedEx, Metrics: fedex},
		{Carrier: CarrierEvri, Metrics: evri},
	}
}

// Impact turns a carrier's total difference into a signed-impact label and an
// unsigned magnitude. A negative difference is a saving against the fixed
// rate; zero or positive is an overspend.
func Impact(totalDifference decimal.Decimal) (label string, amount decimal.Decimal) {
	if totalDifference.Sign() < 0 {
		return "saving", totalDifference.Abs()
	}
	return "overspend", totalDifference
}
