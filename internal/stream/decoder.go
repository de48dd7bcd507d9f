package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Part is one decoded record.
type Part struct {
	Tag byte
	// Text holds the unescaped payload of text and error records.
	Text string
	// Raw holds the payload of every other record.
	Raw json.RawMessage
}

// FinishReason extracts the finish reason of a finish record.
func (p Part) FinishReason() string {
	var payload finishPayload
	if err := json.Unmarshal(p.Raw, &payload); err != nil {
		return ""
	}
	return payload.FinishReason
}

// Decoder turns arbitrarily split chunks into records. Bytes after the last
// newline are kept until a later chunk completes them.
type Decoder struct {
	buf     []byte
	skipped int
}

// Feed appends chunk to the pending bytes and returns every record completed
// by it, in arrival order. Records with unknown tags or undecodable payloads
// are dropped.
func (d *Decoder) Feed(chunk []byte) []Part {
	d.buf = append(d.buf, chunk...)

	var parts []Part
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := d.buf[:i]
		d.buf = d.buf[i+1:]

		part, ok := parseRecord(line)
		if !ok {
			d.skipped++
			continue
		}
		parts = append(parts, part)
	}

	// Release the backing array once everything was consumed.
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return parts
}

// Pending reports how many bytes of an incomplete record are buffered.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Skipped reports how many complete records were dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func parseRecord(line []byte) (Part, bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(line) < 2 || line[1] != ':' {
		return Part{}, false
	}
	tag, payload := line[0], line[2:]

	switch tag {
	case TagText, TagError:
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return Part{}, false
		}
		return Part{Tag: tag, Text: s}, true
	case TagStart, TagStepFinish, TagFinish:
		if !json.Valid(payload) {
			return Part{}, false
		}
		return Part{Tag: tag, Raw: append(json.RawMessage(nil), payload...)}, true
	default:
		return Part{}, false
	}
}

// Text concatenates the text payloads of parts.
func Text(parts []Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.Tag == TagText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
