// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// decoder for the dalia chat client. It turns arbitrarily-chunked response
// bytes into discrete event records and parses the records' fields, without
// any writer or server capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// ParseRecord parses one blank-line-delimited record into an Event.
// It returns false when the record carries no fields at all (for example a
// run of comment lines), in which case the record should be discarded.
func ParseRecord(record string) (Event, bool) {
	var ev Event
	var hasField, hasData bool

	for _, line := range strings.Split(record, "\n") {
		if line == "" {
			continue
		}

		// Lines starting with ':' are comments per the SSE spec.
		if strings.HasPrefix(line, ":") {
			continue
		}

		var field, value string
		if before, after, ok := strings.Cut(line, ":"); ok {
			field = before
			// Strip a single leading space after the colon, per spec.
			value = strings.TrimPrefix(after, " ")
		} else {
			// Line with no colon: the entire line is the field name with
			// an empty value.
			field = line
		}

		switch field {
		case "data":
			if hasData {
				// Multiple data fields are joined with "\n".
				ev.Data += "\n"
			}
			ev.Data += value
			hasData = true
			hasField = true
		case "event":
			ev.Type = value
			hasField = true
		case "id":
			ev.ID = value
			hasField = true
		default:
			// * "retry" is intentionally ignored — not relevant for a chat client.
			// * Other unknown fields are ignored per the SSE spec.
		}
	}

	return ev, hasField
}
