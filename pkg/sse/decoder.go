package sse

import "strings"

// recordSeparator delimits complete records in the raw stream. Per the SSE
// spec a blank line ends an event, so two consecutive newlines close a record.
const recordSeparator = "\n\n"

// Decoder incrementally frames a stream of text fragments into complete
// records. Fragments may be split at arbitrary byte boundaries: the decoder
// buffers any unterminated remainder until the following fragment completes
// it. The emitted record sequence is identical no matter how the input is
// chunked.
//
// A Decoder is created per streaming call and discarded when the call ends.
// It is not safe for concurrent use.
type Decoder struct {
	buf strings.Builder
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends fragment to the internal buffer and returns every record that
// is now complete, in arrival order. Records do not include the separator.
// Carriage returns are dropped before buffering so CRLF-terminated streams
// frame identically to LF-terminated ones.
func (d *Decoder) Feed(fragment string) []string {
	if strings.Contains(fragment, "\r") {
		fragment = strings.ReplaceAll(fragment, "\r", "")
	}
	d.buf.WriteString(fragment)

	buffered := d.buf.String()
	if !strings.Contains(buffered, recordSeparator) {
		return nil
	}

	var records []string
	for {
		idx := strings.Index(buffered, recordSeparator)
		if idx < 0 {
			break
		}
		records = append(records, buffered[:idx])
		buffered = buffered[idx+len(recordSeparator):]
	}

	d.buf.Reset()
	d.buf.WriteString(buffered)

	return records
}

// Flush returns the buffered remainder as one final record when the source
// has signaled end-of-input. Streams that end without a trailing blank line
// still yield their last record this way. The remainder is trimmed of
// surrounding whitespace; returns false when nothing meaningful is buffered.
func (d *Decoder) Flush() (string, bool) {
	rest := strings.TrimSpace(d.buf.String())
	d.buf.Reset()

	if rest == "" {
		return "", false
	}

	return rest, true
}

// Buffered reports how many bytes are held waiting for a separator.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}
