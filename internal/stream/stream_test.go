package stream

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, data []byte) []Part {
	t.Helper()
	var d Decoder
	parts := d.Feed(data)
	require.Zero(t, d.Pending(), "a complete stream leaves nothing buffered")
	return parts
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	parts := decodeAll(t, Encode("Hello", " world"))
	assert.Equal(t, "Hello world", Text(parts))

	last := parts[len(parts)-1]
	assert.Equal(t, TagFinish, last.Tag)
	assert.Equal(t, FinishStop, last.FinishReason())
}

func TestWriter_Escaping(t *testing.T) {
	var buf bytes.Buffer
	sw := NewWriter(&buf)
	require.NoError(t, sw.Text(`She said "hi" \ bye`))
	require.NoError(t, sw.Text("line one\nline <two> & more"))

	assert.Equal(t,
		`0:"She said \"hi\" \\ bye"`+"\n"+`0:"line one\nline <two> & more"`+"\n",
		buf.String())

	parts := decodeAll(t, buf.Bytes())
	assert.Equal(t, "She said \"hi\" \\ byeline one\nline <two> & more", Text(parts))
}

func TestWriter_Records(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(rec)

	require.NoError(t, sw.Start("msg-1"))
	require.NoError(t, sw.Text(""))
	require.NoError(t, sw.Text("a"))
	require.NoError(t, sw.Finish("", Usage{PromptTokens: 3, CompletionTokens: 1}))

	assert.Equal(t,
		`f:{"messageId":"msg-1"}`+"\n"+
			`0:"a"`+"\n"+
			`e:{"finishReason":"stop","usage":{"promptTokens":3,"completionTokens":1},"isContinued":false}`+"\n"+
			`d:{"finishReason":"stop","usage":{"promptTokens":3,"completionTokens":1}}`+"\n",
		rec.Body.String())
	assert.True(t, rec.Flushed)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriter_WriteFailure(t *testing.T) {
	err := NewWriter(failingWriter{}).Text("x")
	assert.ErrorContains(t, err, "broken pipe")
}

func TestDecoder_SplitAcrossChunks(t *testing.T) {
	data := Encode("fragment one", " and ünïcode", " third")

	// Every possible split point, including ones inside escapes and multi-byte runes.
	for i := 0; i <= len(data); i++ {
		var d Decoder
		parts := d.Feed(data[:i])
		parts = append(parts, d.Feed(data[i:])...)
		assert.Equal(t, "fragment one and ünïcode third", Text(parts), "split at %d", i)
		assert.Zero(t, d.Pending())
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	data := Encode("a", "b", "c")
	var d Decoder
	var parts []Part
	for _, b := range data {
		parts = append(parts, d.Feed([]byte{b})...)
	}
	assert.Equal(t, "abc", Text(parts))
}

func TestDecoder_IgnoresUnknownAndMalformed(t *testing.T) {
	input := "f:{\"messageId\":\"m\"}\n" +
		"9:[1,2]\n" +
		"0:\"ok\"\n" +
		"0:not-json\n" +
		"garbage\n" +
		"\n" +
		"8:{\"x\":1}\r\n" +
		"0:\"!\"\r\n"

	var d Decoder
	parts := d.Feed([]byte(input))

	assert.Equal(t, "ok!", Text(parts))
	assert.Equal(t, 5, d.Skipped())
}

func TestDecoder_ErrorRecord(t *testing.T) {
	var d Decoder
	parts := d.Feed([]byte("0:\"partial\"\n3:\"An error occurred.\"\n"))
	require.Len(t, parts, 2)
	assert.Equal(t, TagError, parts[1].Tag)
	assert.Equal(t, "An error occurred.", parts[1].Text)
	assert.Equal(t, "partial", Text(parts))
}

func TestDecoder_HoldsPartialRecord(t *testing.T) {
	var d Decoder
	parts := d.Feed([]byte("0:\"hel"))
	assert.Empty(t, parts)
	assert.Equal(t, 6, d.Pending())

	parts = d.Feed([]byte("lo\"\n"))
	assert.Equal(t, "hello", Text(parts))
	assert.Zero(t, d.Pending())
}
