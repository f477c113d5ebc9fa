package sse

import "io"

// readChunkSize is the read buffer size for each pull from the source.
const readChunkSize = 4 * 1024

// Reader pulls parsed SSE events from a source io.Reader. It reads the
// source in arbitrary-size chunks, frames them through a Decoder, and parses
// each complete record. Records that carry no fields (comment-only records,
// keep-alive blank lines) are skipped.
//
// ┌──────────────────┐   ┌─────────────┐   ┌───────┐
// │ source io.Reader │──▶│   Decoder   │──▶│ Event │
// └──────────────────┘   └─────────────┘   └───────┘
type Reader struct {
	src     io.Reader
	dec     *Decoder
	chunk   []byte
	pending []string
	eof     bool
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src:   src,
		dec:   NewDecoder(),
		chunk: make([]byte, readChunkSize),
	}
}

// Next returns the next parsed SSE event. It blocks until a complete record
// is available (terminated by a blank line) or the source is exhausted.
// Next returns nil, nil when the source has ended and every buffered record
// has been yielded, including a final unterminated record if present.
func (r *Reader) Next() (*Event, error) {
	for {
		// Drain records framed by earlier reads first.
		for len(r.pending) > 0 {
			record := r.pending[0]
			r.pending = r.pending[1:]

			if ev, ok := ParseRecord(record); ok {
				return &ev, nil
			}
		}

		if r.eof {
			return nil, nil
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.pending = r.dec.Feed(string(r.chunk[:n]))
		}

		if err != nil {
			if err != io.EOF {
				return nil, err
			}

			// Lenient final flush: a stream that ends without a trailing
			// separator still yields its last record.
			r.eof = true
			if rest, ok := r.dec.Flush(); ok {
				r.pending = append(r.pending, rest)
			}
		}
	}
}
