// Package stream implements the line-framed data stream used between the chat
// endpoint and its clients. Every record is "<tag>:<payload>\n" where the
// payload is JSON.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Record tags.
const (
	TagText       byte = '0'
	TagError      byte = '3'
	TagStart      byte = 'f'
	TagStepFinish byte = 'e'
	TagFinish     byte = 'd'
)

// Response headers of a data stream.
const (
	ContentType   = "text/plain; charset=utf-8"
	VersionHeader = "X-Vercel-AI-Data-Stream"
	Version       = "v1"
)

// Finish reasons.
const (
	FinishStop   = "stop"
	FinishLength = "length"
)

// Usage is the token accounting attached to finish records.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

type startPayload struct {
	MessageID string `json:"messageId"`
}

type finishPayload struct {
	FinishReason string `json:"finishReason"`
	Usage        Usage  `json:"usage"`
	IsContinued  *bool  `json:"isContinued,omitempty"`
}

// Writer encodes records to an underlying writer. When the destination is an
// http.Flusher every record is flushed as soon as it is written.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter returns a Writer encoding onto w.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// Start writes the stream-start record.
func (sw *Writer) Start(messageID string) error {
	return sw.write(TagStart, startPayload{MessageID: messageID})
}

// Text writes one text fragment. Empty fragments are skipped.
func (sw *Writer) Text(fragment string) error {
	if fragment == "" {
		return nil
	}
	return sw.write(TagText, fragment)
}

// Error writes an error record. A stream carrying one is never finished.
func (sw *Writer) Error(message string) error {
	return sw.write(TagError, message)
}

// Finish writes the step-finish and message-finish records that terminate a
// successful stream.
func (sw *Writer) Finish(reason string, usage Usage) error {
	if reason == "" {
		reason = FinishStop
	}
	continued := false
	if err := sw.write(TagStepFinish, finishPayload{FinishReason: reason, Usage: usage, IsContinued: &continued}); err != nil {
		return err
	}
	return sw.write(TagFinish, finishPayload{FinishReason: reason, Usage: usage})
}

func (sw *Writer) write(tag byte, payload any) error {
	record, err := encodeRecord(tag, payload)
	if err != nil {
		return err
	}
	if _, err := sw.w.Write(record); err != nil {
		return fmt.Errorf("failed to write %q record: %w", tag, err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// encodeRecord frames payload as one record. json.Encoder terminates its
// output with the newline that ends the record; HTML escaping is turned off so
// fragments keep their original characters.
func encodeRecord(tag byte, payload any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tag)
	buf.WriteByte(':')
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("could not encode %q record: %w", tag, err)
	}
	return buf.Bytes(), nil
}

// Encode returns the records of a complete successful stream carrying fragments.
func Encode(fragments ...string) []byte {
	var buf bytes.Buffer
	sw := NewWriter(&buf)
	for _, f := range fragments {
		_ = sw.Text(f)
	}
	_ = sw.Finish(FinishStop, Usage{})
	return buf.Bytes()
}
