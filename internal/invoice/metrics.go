package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Status describes how a carrier's average despatch cost compares to the
// contractually fixed rate.
type Status string

const (
	StatusOverRate  Status = "Over the fixed rate"
	StatusUnderRate Status = "Under the fixed rate"
	StatusOnRate    Status = "On the fixed rate"
	StatusNoData    Status = "No data"
)

// Metrics summarises one carrier's despatch economics for the audit period.
type Metrics struct {
	Despatches      int             `json:"despatches"`
	Spend           decimal.Decimal `json:"spend"`
	AvgCost         decimal.Decimal `json:"avg_cost"`
	FixedRate       decimal.Decimal `json:"fixed_rate"`
	Variance        decimal.Decimal `json:"variance"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	Status          Status          `json:"status"`
}

// ComputeMetrics reduces a despatch count and spend total to summary metrics
// against a fixed per-despatch rate. The supplement is folded into spend
// before the average is taken, without touching the despatch count; it is how
// a separately bucketed surcharge (fuel) joins the despatch economics.
//
// Spend, average, variance and total difference are each rounded to three
// decimal places at assignment. A zero despatch count returns the NoData
// sentinel before any division happens.
func ComputeMetrics(despatches int, spend, supplement, fixedRate decimal.Decimal) Metrics {
	if despatches == 0 {
		return Metrics{FixedRate: fixedRate, Status: StatusNoData}
	}

	total := spend.Add(supplement).Round(3)
	avg := total.Div(decimal.NewFromInt(int64(despatches))).Round(3)
	variance := avg.Sub(fixedRate).Round(3)
	totalDiff := variance.Mul(decimal.NewFromInt(int64(despatches))).Round(3)

	var status Status
	switch variance.Sign() {
	case 1:
		status = StatusOverRate
	case -1:
		status = StatusUnderRate
	default:
		status = StatusOnRate
	}

	return Metrics{
		Despatches:      despatches,
		Spend:           total,
		AvgCost:         avg,
		FixedRate:       fixedRate,
		Variance:        variance,
		TotalDifference: totalDiff,
		Status:          status,
	}
}

// FedExMetrics computes metrics over FedEx shipment records. Each record is
// one despatch.
func FedExMetrics(records []ShipmentRecord, fixedRate decimal.Decimal) Metrics {
	spend := decimal.Zero
	for _, rec := range records {
		spend = spend.Add(rec.Charge)
	}
	return ComputeMetrics(len(records), spend, decimal.Zero, fixedRate)
}

// EvriMetrics computes metrics over Evri despatch rows. One row may bill many
// despatches, so the count is the quantity sum, not the row count. The
// supplement is the fuel surcharge total from the extras bucket.
func EvriMetrics(despatch []ServiceLineRecord, supplement, fixedRate decimal.Decimal) Metrics {
	despatches := 0
	spend := decimal.Zero
	for _, rec := range despatch {
		despatches += rec.Quantity
		spend = spend.Add(rec.Value)
	}
	return ComputeMetrics(despatches, spend, supplement, fixedRate)
}

// FuelSurchargeTotal sums the value of extra rows whose service name marks
// them as a fuel surcharge.
func FuelSurchargeTotal(extras []ServiceLineRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range extras {
		if strings.Contains(strings.ToLower(rec.Service), "fuel") {
			total = total.Add(rec.Value)
		}
	}
	return total
}
