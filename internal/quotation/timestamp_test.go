package quotation

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScanTime", func() {
	var loc *time.Location

	BeforeEach(func() {
		var err error
		loc, err = time.LoadLocation(DefaultTimeZone)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ParseScanTime", func() {
		When("the value is a valid wire timestamp", func() {
			It("should parse an afternoon time", func() {
				st, ok := ParseScanTime("03/07/2024 02:15 PM", loc)
				Expect(ok).To(BeTrue())
				Expect(st.Time()).To(Equal(time.Date(2024, 3, 7, 14, 15, 0, 0, loc)))
			})

			It("should parse a morning time", func() {
				st, ok := ParseScanTime("03/07/2024 09:05 AM", loc)
				Expect(ok).To(BeTrue())
				Expect(st.Time().Hour()).To(Equal(9))
			})

			It("should parse midnight as hour zero", func() {
				st, ok := ParseScanTime("03/07/2024 12:00 AM", loc)
				Expect(ok).To(BeTrue())
				Expect(st.Time().Hour()).To(Equal(0))
			})

			It("should tolerate surrounding whitespace", func() {
				_, ok := ParseScanTime("  03/07/2024 02:15 PM  ", loc)
				Expect(ok).To(BeTrue())
			})
		})

		When("the value is empty or malformed", func() {
			It("should report false for an empty string", func() {
				_, ok := ParseScanTime("", loc)
				Expect(ok).To(BeFalse())
			})

			It("should report false for whitespace", func() {
				_, ok := ParseScanTime("   ", loc)
				Expect(ok).To(BeFalse())
			})

			It("should report false for garbage", func() {
				_, ok := ParseScanTime("garbage", loc)
				Expect(ok).To(BeFalse())
			})

			It("should report false for an ISO timestamp", func() {
				_, ok := ParseScanTime("2024-03-07T14:15:00Z", loc)
				Expect(ok).To(BeFalse())
			})
		})
	})

	Describe("Format", func() {
		It("should render the wire format", func() {
			st := NewScanTime(time.Date(2024, 3, 7, 14, 15, 42, 0, loc), loc)
			Expect(st.Format()).To(Equal("03/07/2024 02:15 PM"))
		})

		It("should zero-pad month, day and hour", func() {
			st := NewScanTime(time.Date(2024, 1, 2, 3, 4, 0, 0, loc), loc)
			Expect(st.Format()).To(Equal("01/02/2024 03:04 AM"))
		})

		It("should round-trip through ParseScanTime", func() {
			st := NewScanTime(time.Date(2024, 3, 7, 14, 15, 0, 0, loc), loc)
			parsed, ok := ParseScanTime(st.Format(), loc)
			Expect(ok).To(BeTrue())
			Expect(parsed.Time()).To(Equal(st.Time()))
		})
	})

	Describe("ElapsedSeconds", func() {
		It("should return whole elapsed seconds", func() {
			st, ok := ParseScanTime("03/07/2024 02:00 PM", loc)
			Expect(ok).To(BeTrue())
			now := time.Date(2024, 3, 7, 14, 1, 30, 0, loc)
			Expect(st.ElapsedSeconds(now)).To(Equal(90))
		})

		It("should truncate sub-second remainders toward zero", func() {
			st, ok := ParseScanTime("03/07/2024 02:00 PM", loc)
			Expect(ok).To(BeTrue())
			now := time.Date(2024, 3, 7, 14, 0, 59, 900_000_000, loc)
			Expect(st.ElapsedSeconds(now)).To(Equal(59))
		})

		It("should go negative for future timestamps", func() {
			st, ok := ParseScanTime("03/07/2024 02:10 PM", loc)
			Expect(ok).To(BeTrue())
			now := time.Date(2024, 3, 7, 14, 0, 0, 0, loc)
			Expect(st.ElapsedSeconds(now)).To(BeNumerically("<", 0))
		})
	})
})
