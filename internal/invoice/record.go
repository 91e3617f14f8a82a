package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentRecord is one billed FedEx shipment line
type ShipmentRecord struct {
	ShipmentNumber string          `json:"shipment_number"`
	ShipmentDate   string          `json:"shipment_date"` // dd/mm/yyyy as printed on the invoice
	ParsedDate     *time.Time      `json:"parsed_date,omitempty"`
	Charge         decimal.Decimal `json:"charge"`
	SourceFile     string          `json:"source_file"`
	RawLine        string          `json:"raw_line"`
}

// ServiceLineRecord is one billed Evri service line
type ServiceLineRecord struct {
	Service    string          `json:"service"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
	Value      decimal.Decimal `json:"value"`
	SourceFile string          `json:"source_file"`
	RawLine    string          `json:"raw_line"`
}
