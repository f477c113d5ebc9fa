package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// collectRecords runs a full stream through a fresh Decoder using the given
// fragment sizes and returns every record including the final flush.
func collectRecords(stream string, fragmentSizes []int) []string {
	dec := NewDecoder()
	var records []string

	rest := stream
	for _, size := range fragmentSizes {
		if size > len(rest) {
			size = len(rest)
		}
		records = append(records, dec.Feed(rest[:size])...)
		rest = rest[size:]
	}
	if rest != "" {
		records = append(records, dec.Feed(rest)...)
	}

	if last, ok := dec.Flush(); ok {
		records = append(records, last)
	}

	return records
}

var _ = Describe("Decoder", func() {
	Describe("Feed", func() {
		It("frames a single complete record", func() {
			dec := NewDecoder()
			records := dec.Feed("data: hello\n\n")
			Expect(records).To(Equal([]string{"data: hello"}))
			Expect(dec.Buffered()).To(BeZero())
		})

		It("frames multiple records from one fragment", func() {
			dec := NewDecoder()
			records := dec.Feed("data: first\n\ndata: second\n\n")
			Expect(records).To(Equal([]string{"data: first", "data: second"}))
		})

		It("retains an unterminated remainder for the next fragment", func() {
			dec := NewDecoder()
			Expect(dec.Feed("data: hel")).To(BeEmpty())
			Expect(dec.Buffered()).NotTo(BeZero())

			records := dec.Feed("lo\n\n")
			Expect(records).To(Equal([]string{"data: hello"}))
		})

		It("splits cleanly when the separator itself straddles fragments", func() {
			dec := NewDecoder()
			Expect(dec.Feed("data: one\n")).To(BeEmpty())
			records := dec.Feed("\ndata: two\n\n")
			Expect(records).To(Equal([]string{"data: one", "data: two"}))
		})

		It("normalizes CRLF streams to the same records", func() {
			dec := NewDecoder()
			records := dec.Feed("data: hello\r\n\r\n")
			Expect(records).To(Equal([]string{"data: hello"}))
		})

		It("emits records in arrival order", func() {
			dec := NewDecoder()
			var records []string
			records = append(records, dec.Feed("data: a\n\ndata: b\n")...)
			records = append(records, dec.Feed("\ndata: c\n\n")...)
			Expect(records).To(Equal([]string{"data: a", "data: b", "data: c"}))
		})
	})

	Describe("Flush", func() {
		It("yields a final record when the stream ends without a separator", func() {
			dec := NewDecoder()
			Expect(dec.Feed("data: tail")).To(BeEmpty())

			rest, ok := dec.Flush()
			Expect(ok).To(BeTrue())
			Expect(rest).To(Equal("data: tail"))
		})

		It("trims surrounding whitespace from the final record", func() {
			dec := NewDecoder()
			dec.Feed("data: tail\n")

			rest, ok := dec.Flush()
			Expect(ok).To(BeTrue())
			Expect(rest).To(Equal("data: tail"))
		})

		It("reports nothing for an empty buffer", func() {
			dec := NewDecoder()
			_, ok := dec.Flush()
			Expect(ok).To(BeFalse())
		})

		It("reports nothing for a whitespace-only buffer", func() {
			dec := NewDecoder()
			dec.Feed("\n")
			_, ok := dec.Flush()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("framing invariance", func() {
		stream := "data: {\"type\":\"start\",\"conversation_id\":\"c1\"}\n\n" +
			"data: {\"type\":\"content\",\"chunk\":\"Hello\"}\n\n" +
			"data: {\"type\":\"content\",\"chunk\":\" world\"}\n\n" +
			"data: line one\ndata: line two\n\n" +
			"data: {\"type\":\"complete\",\"conversation_id\":\"c1\"}"

		It("yields the same records for any single split point", func() {
			whole := collectRecords(stream, nil)
			Expect(whole).To(HaveLen(5))

			for i := 1; i < len(stream); i++ {
				split := collectRecords(stream, []int{i})
				Expect(split).To(Equal(whole), "split at byte %d", i)
			}
		})

		It("yields the same records byte-by-byte", func() {
			whole := collectRecords(stream, nil)

			sizes := make([]int, len(stream))
			for i := range sizes {
				sizes[i] = 1
			}
			Expect(collectRecords(stream, sizes)).To(Equal(whole))
		})

		It("yields the same records for uneven fragment runs", func() {
			whole := collectRecords(stream, nil)

			Expect(collectRecords(stream, []int{3, 1, 40, 2, 7, 100})).To(Equal(whole))
			Expect(collectRecords(stream, []int{1, 1, 1, 50, 50, 50})).To(Equal(whole))
		})
	})
})
