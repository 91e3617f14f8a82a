package document

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeExtractor is a fake implementation of Extractor
type fakeExtractor struct {
	text   string
	err    error
	calls  int
	closed bool
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeExtractor) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("FallbackExtractor", func() {
	var (
		primary   *fakeExtractor
		secondary *fakeExtractor
		extractor *FallbackExtractor
		text      string
		err       error
	)

	BeforeEach(func() {
		primary = &fakeExtractor{}
		secondary = &fakeExtractor{}
	})

	JustBeforeEach(func() {
		extractor = NewFallbackExtractor(primary, secondary)
		text, err = extractor.ExtractText(context.Background(), []byte("%PDF-"), "application/pdf")
	})

	When("the primary extractor finds text", func() {
		BeforeEach(func() {
			primary.text = "123456789 13/10/2025 FedEx Priority 17.10"
			secondary.text = "should not be used"
		})

		It("should return the primary text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("123456789 13/10/2025 FedEx Priority 17.10"))
		})

		It("should not call the fallback", func() {
			Expect(secondary.calls).To(Equal(0))
		})
	})

	When("the primary text layer is empty", func() {
		BeforeEach(func() {
			primary.text = "  \n \n"
			secondary.text = "transcribed line"
		})

		It("should fall back to the OCR extractor", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("transcribed line"))
		})
	})

	When("the primary extractor fails", func() {
		BeforeEach(func() {
			primary.err = errors.New("no text layer")
			secondary.text = "transcribed line"
		})

		It("should fall back to the OCR extractor", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("transcribed line"))
		})
	})

	When("both extractors fail", func() {
		BeforeEach(func() {
			primary.err = errors.New("no text layer")
			secondary.err = errors.New("model unavailable")
		})

		It("should return the fallback error", func() {
			Expect(err).To(MatchError("model unavailable"))
		})
	})

	Describe("Close", func() {
		It("should close both extractors", func() {
			extractor = NewFallbackExtractor(primary, secondary)
			Expect(extractor.Close()).To(Succeed())
			Expect(primary.closed).To(BeTrue())
			Expect(secondary.closed).To(BeTrue())
		})
	})
})
