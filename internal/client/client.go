// Package client talks to the chat endpoint and decodes its data stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"after3am/backend/internal/model"
	"after3am/backend/internal/stream"
)

var (
	// ErrServer is returned when the endpoint answers with a non-200 status.
	ErrServer = errors.New("chat endpoint returned an error")
	// ErrStreamFailed is returned when the stream carries an error record.
	ErrStreamFailed = errors.New("chat stream reported an error")
	// ErrIncompleteStream is returned when the stream ends without its finish record.
	ErrIncompleteStream = errors.New("chat stream ended before completion")
)

const readBufferSize = 4096

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Stream posts req to the chat endpoint and calls onText for every text
// fragment in arrival order. It returns nil only when the stream finished
// normally. A cancelled ctx aborts the request and its error is returned
// unwrapped so callers can tell cancellation from failure.
func (c *Client) Stream(ctx context.Context, req *model.ChatRequest, onText func(string)) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, readErrorMessage(resp.Body))
	}

	var (
		dec      stream.Decoder
		finished bool
		failure  string
	)
	buf := make([]byte, readBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		for _, part := range dec.Feed(buf[:n]) {
			switch part.Tag {
			case stream.TagText:
				onText(part.Text)
			case stream.TagError:
				failure = part.Text
			case stream.TagFinish:
				finished = true
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("could not read stream: %w", readErr)
		}
	}

	switch {
	case failure != "":
		return fmt.Errorf("%w: %s", ErrStreamFailed, failure)
	case !finished:
		return ErrIncompleteStream
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4*1024))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
