package sse

import (
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// drippingReader returns at most drip bytes per Read call to simulate
// non-semantic network chunk boundaries.
type drippingReader struct {
	rest string
	drip int
}

func (d *drippingReader) Read(p []byte) (int, error) {
	if d.rest == "" {
		return 0, io.EOF
	}

	n := d.drip
	if n > len(d.rest) {
		n = len(d.rest)
	}
	if n > len(p) {
		n = len(p)
	}

	copy(p, d.rest[:n])
	d.rest = d.rest[n:]
	return n, nil
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("parses a single event", func() {
			r := NewReader(strings.NewReader("data: hello world\n\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("hello world"))
			Expect(ev.Type).To(BeEmpty())
			Expect(ev.ID).To(BeEmpty())

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
		})

		It("parses multiple events", func() {
			r := NewReader(strings.NewReader("data: first\n\ndata: second\n\n"))

			ev1, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev1.Data).To(Equal("first"))

			ev2, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev2.Data).To(Equal("second"))

			ev3, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev3).To(BeNil())
		})

		It("parses event type and ID", func() {
			r := NewReader(strings.NewReader("event: update\nid: 42\ndata: {\"type\":\"content\"}\n\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal("update"))
			Expect(ev.ID).To(Equal("42"))
			Expect(ev.Data).To(Equal("{\"type\":\"content\"}"))
		})

		It("joins multiple data lines with newline", func() {
			r := NewReader(strings.NewReader("data: line one\ndata: line two\ndata: line three\n\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("line one\nline two\nline three"))
		})

		It("skips comment-only records", func() {
			r := NewReader(strings.NewReader(": keep-alive\n\ndata: real\n\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("real"))
		})

		It("yields a trailing event when the stream ends without a blank line", func() {
			r := NewReader(strings.NewReader("data: first\n\ndata: last"))

			ev1, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev1.Data).To(Equal("first"))

			ev2, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev2.Data).To(Equal("last"))

			ev3, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev3).To(BeNil())
		})

		It("is unaffected by read chunk boundaries", func() {
			input := "data: {\"type\":\"content\",\"chunk\":\"Hello\"}\n\n" +
				"data: {\"type\":\"content\",\"chunk\":\" world\"}\n\n" +
				"data: done\n\n"

			for _, drip := range []int{1, 2, 3, 7, 64} {
				r := NewReader(&drippingReader{rest: input, drip: drip})

				var datas []string
				for {
					ev, err := r.Next()
					Expect(err).NotTo(HaveOccurred())
					if ev == nil {
						break
					}
					datas = append(datas, ev.Data)
				}

				Expect(datas).To(Equal([]string{
					"{\"type\":\"content\",\"chunk\":\"Hello\"}",
					"{\"type\":\"content\",\"chunk\":\" world\"}",
					"done",
				}), "drip size %d", drip)
			}
		})

		It("keeps returning nil after exhaustion", func() {
			r := NewReader(strings.NewReader("data: only\n\n"))

			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			for range 3 {
				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			}
		})
	})
})

var _ = Describe("ParseRecord", func() {
	It("parses data, event, and id fields", func() {
		ev, ok := ParseRecord("event: update\nid: 7\ndata: payload")
		Expect(ok).To(BeTrue())
		Expect(ev.Type).To(Equal("update"))
		Expect(ev.ID).To(Equal("7"))
		Expect(ev.Data).To(Equal("payload"))
	})

	It("strips exactly one space after the colon", func() {
		ev, ok := ParseRecord("data:  двойной")
		Expect(ok).To(BeTrue())
		Expect(ev.Data).To(Equal(" двойной"))
	})

	It("treats a colonless line as a bare field name", func() {
		ev, ok := ParseRecord("data")
		Expect(ok).To(BeTrue())
		Expect(ev.Data).To(BeEmpty())
	})

	It("rejects records with no fields", func() {
		_, ok := ParseRecord(": just a comment")
		Expect(ok).To(BeFalse())

		_, ok = ParseRecord("")
		Expect(ok).To(BeFalse())
	})

	It("ignores unknown fields", func() {
		ev, ok := ParseRecord("retry: 1000\ndata: hi")
		Expect(ok).To(BeTrue())
		Expect(ev.Data).To(Equal("hi"))
	})
})
