package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("BuildSummary", func() {
	var (
		fedex   Metrics
		evri    Metrics
		summary []SummaryRow
	)

	BeforeEach(func() {
		fedex = ComputeMetrics(10, decimal.RequireFromString("31.00"), decimal.Zero, decimal.RequireFromString("3.10"))
		evri = ComputeMetrics(40, decimal.RequireFromString("100.00"), decimal.RequireFromString("20.00"), decimal.RequireFromString("2.44"))
	})

	JustBeforeEach(func() {
		summary = BuildSummary(fedex, evri)
	})

	It("should produce one row per carrier, FedEx first", func() {
		Expect(summary).To(HaveLen(2))
		Expect(summary[0].Carrier).To(Equal(CarrierFedEx))
		Expect(summary[1].Carrier).To(Equal(CarrierEvri))
	})

	It("should carry each carrier's metrics unchanged", func() {
		Expect(summary[0].Status).To(Equal(StatusOnRate))
		Expect(summary[1].Status).To(Equal(StatusOverRate))
		Expect(summary[1].Spend.Equal(decimal.RequireFromString("120.00"))).To(BeTrue())
	})
})

var _ = Describe("Impact", func() {
	var (
		totalDifference decimal.Decimal
		label           string
		amount          decimal.Decimal
	)

	JustBeforeEach(func() {
		label, amount = Impact(totalDifference)
	})

	When("the total difference is negative", func() {
		BeforeEach(func() {
			totalDifference = decimal.RequireFromString("-22.40")
		})

		It("should label it a saving", func() {
			Expect(label).To(Equal("saving"))
		})

		It("should report the magnitude unsigned", func() {
			Expect(amount.Equal(decimal.RequireFromString("22.40"))).To(BeTrue())
		})
	})

	When("the total difference is positive", func() {
		BeforeEach(func() {
			totalDifference = decimal.RequireFromString("22.40")
		})

		It("should label it an overspend", func() {
			Expect(label).To(Equal("overspend"))
			Expect(amount.Equal(decimal.RequireFromString("22.40"))).To(BeTrue())
		})
	})

	When("the total difference is zero", func() {
		BeforeEach(func() {
			totalDifference = decimal.Zero
		})

		It("should label it an overspend of zero", func() {
			Expect(label).To(Equal("overspend"))
			Expect(amount.IsZero()).To(BeTrue())
		})
	})
})
