package llm

import (
	"context"
	"errors"
)

// Message represents a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Request is one completion call. System carries the fixed instruction set;
// Messages carries conversation history ending with the user turn.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response is a finished completion with token accounting.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// StreamEvent is one element of a streaming completion: ordered text deltas
// followed by exactly one terminal event (Done=true) carrying usage. Err is
// set instead of Done when the stream fails mid-flight.
type StreamEvent struct {
	Delta        string
	Done         bool
	Err          error
	InputTokens  int
	OutputTokens int
}

// ErrEmptyResponse is returned when a provider answers without content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Provider defines the contract for any LLM backend.
type Provider interface {
	// Complete sends the request and blocks for the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends the request and returns a channel of ordered events.
	// The channel is closed after the terminal event. Cancelling ctx
	// aborts the stream; consumers decide what happens to partial output.
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}
