package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/parcelops/carrier-audit/internal/invoice"
)

// memoryStorage is a fake implementation of Storage
type memoryStorage struct {
	files   map[string][]byte
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.files[filename] = data
	return filename, nil
}

func (m *memoryStorage) Get(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

func parseCSV(data []byte) [][]string {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return records
}

var _ = Describe("Writer", func() {
	var (
		storage *memoryStorage
		writer  *Writer
	)

	BeforeEach(func() {
		storage = newMemoryStorage()
		writer = NewWriter(storage)
	})

	Describe("WriteSummary", func() {
		var (
			rows []invoice.SummaryRow
			err  error
		)

		BeforeEach(func() {
			fedex := invoice.ComputeMetrics(10, decimal.RequireFromString("31.00"), decimal.Zero, decimal.RequireFromString("3.10"))
			evri := invoice.ComputeMetrics(40, decimal.RequireFromString("100.00"), decimal.RequireFromString("20.00"), decimal.RequireFromString("2.44"))
			rows = invoice.BuildSummary(fedex, evri)
		})

		JustBeforeEach(func() {
			err = writer.WriteSummary(rows)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the fixed column header", func() {
			records := parseCSV(storage.files[SummaryFile])
			Expect(records[0]).To(Equal([]string{
				"carrier", "despatches", "spend", "avg_cost_per_despatch",
				"fixed_rate", "variance_per_despatch", "total_difference", "status",
			}))
		})

		It("should write one row per carrier in order", func() {
			records := parseCSV(storage.files[SummaryFile])
			Expect(records).To(HaveLen(3))
			Expect(records[1][0]).To(Equal("FedEx"))
			Expect(records[2][0]).To(Equal("Evri outbound"))
		})

		It("should render the metric values", func() {
			records := parseCSV(storage.files[SummaryFile])
			Expect(records[1][1]).To(Equal("10"))
			Expect(records[1][7]).To(Equal("On the fixed rate"))
			Expect(records[2][7]).To(Equal("Over the fixed rate"))
		})

		When("the storage fails", func() {
			BeforeEach(func() {
				storage.saveErr = errors.New("disk full")
			})

			It("should wrap the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(SummaryFile))
			})
		})
	})

	Describe("WriteShipments", func() {
		var (
			shipments []invoice.ShipmentRecord
			err       error
		)

		BeforeEach(func() {
			parsed := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
			shipments = []invoice.ShipmentRecord{
				{
					ShipmentNumber: "123456789",
					ShipmentDate:   "13/10/2025",
					ParsedDate:     &parsed,
					Charge:         decimal.RequireFromString("17.10"),
					SourceFile:     "oct.pdf",
					RawLine:        "123456789 13/10/2025 FedEx Priority 2.50 17.10",
				},
				{
					ShipmentNumber: "223456789",
					ShipmentDate:   "31/02/2025",
					Charge:         decimal.RequireFromString("3.20"),
					SourceFile:     "oct.pdf",
					RawLine:        "223456789 31/02/2025 FedEx Economy 3.20",
				},
			}
		})

		JustBeforeEach(func() {
			err = writer.WriteShipments(FedExCleanedFile, shipments)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the fixed column header", func() {
			records := parseCSV(storage.files[FedExCleanedFile])
			Expect(records[0]).To(Equal([]string{
				"shipment_number", "shipment_date", "shipment_date_parsed",
				"charge", "source_file", "raw_line",
			}))
		})

		It("should format the parsed date as ISO", func() {
			records := parseCSV(storage.files[FedExCleanedFile])
			Expect(records[1][2]).To(Equal("2025-10-13"))
		})

		It("should leave the parsed date blank when absent", func() {
			records := parseCSV(storage.files[FedExCleanedFile])
			Expect(records[2][2]).To(Equal(""))
			Expect(records[2][1]).To(Equal("31/02/2025"))
		})
	})

	Describe("WriteServiceLines", func() {
		var (
			lines []invoice.ServiceLineRecord
			err   error
		)

		BeforeEach(func() {
			lines = []invoice.ServiceLineRecord{
				{
					Service:    "Scottish Highlands & Islands Parcel",
					Quantity:   36,
					UnitPrice:  decimal.RequireFromString("5.28"),
					Value:      decimal.RequireFromString("190.08"),
					SourceFile: "evri.pdf",
					RawLine:    "Scottish Highlands & Islands Parcel 36 5.28 S 190.08",
				},
			}
		})

		JustBeforeEach(func() {
			err = writer.WriteServiceLines(EvriDespatchFile, lines)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the fixed column header", func() {
			records := parseCSV(storage.files[EvriDespatchFile])
			Expect(records[0]).To(Equal([]string{
				"service", "quantity", "price", "value", "source_file", "raw_line",
			}))
		})

		It("should render the line values", func() {
			records := parseCSV(storage.files[EvriDespatchFile])
			Expect(records[1][0]).To(Equal("Scottish Highlands & Islands Parcel"))
			Expect(records[1][1]).To(Equal("36"))
		})

		When("the bucket is empty", func() {
			BeforeEach(func() {
				lines = nil
			})

			It("should still write the header row", func() {
				records := parseCSV(storage.files[EvriDespatchFile])
				Expect(records).To(HaveLen(1))
			})
		})
	})
})
