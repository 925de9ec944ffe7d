// Package chat assembles retrieved excerpts and conversation history into
// grounded, citation-bearing LLM answers.
package chat

import (
	"context"
	"fmt"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/retrieval"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope is the conversation's retrieval filter.
type Scope struct {
	TenantId    uuid.UUID
	DocumentIds []uuid.UUID
	PolicyIds   []uuid.UUID
}

// Answer is a finished blocking chat turn.
type Answer struct {
	Text         string
	Citations    []Citation
	Sources      []*contract.ChunkSearchResult
	InputTokens  int
	OutputTokens int
}

// StreamEvent is one element of a streaming chat turn. Deltas arrive in
// order; the terminal event carries the citations resolved from the full
// text plus token usage.
type StreamEvent struct {
	Delta        string
	Done         bool
	Err          error
	Citations    []Citation
	Sources      []*contract.ChunkSearchResult
	InputTokens  int
	OutputTokens int
}

// Orchestrator wires the retriever and LLM provider into chat turns.
type Orchestrator struct {
	retriever *retrieval.Retriever
	provider  llm.Provider
	config    retrieval.Config
	maxTokens int
	logger    *zap.Logger
}

func NewOrchestrator(retriever *retrieval.Retriever, provider llm.Provider, config retrieval.Config, maxTokens int, logger *zap.Logger) *Orchestrator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Orchestrator{
		retriever: retriever,
		provider:  provider,
		config:    config,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// prepare runs retrieval and builds the LLM request shared by both modes.
func (o *Orchestrator) prepare(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	scope Scope,
	history []*entity.ChatMessage,
	question string,
) (llm.Request, []*contract.ChunkSearchResult, error) {

	results, err := o.retriever.Execute(ctx, uow, scope.TenantId, question, retrieval.Filter{
		DocumentIds: scope.DocumentIds,
		PolicyIds:   scope.PolicyIds,
	}, o.config)
	if err != nil {
		return llm.Request{}, nil, fmt.Errorf("retrieval failed: %w", err)
	}

	messages := buildHistory(history)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: buildUserTurn(buildContextBlock(results), question),
	})

	req := llm.Request{
		System:      constant.ChatSystemPromptV1,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: 0.3,
	}
	return req, results, nil
}

// Ask runs one blocking chat turn.
func (o *Orchestrator) Ask(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	scope Scope,
	history []*entity.ChatMessage,
	question string,
) (*Answer, error) {

	req, results, err := o.prepare(ctx, uow, scope, history, question)
	if err != nil {
		return nil, err
	}

	resp, err := o.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &Answer{
		Text:         resp.Text,
		Citations:    extractCitations(resp.Text, results),
		Sources:      results,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// AskStream runs one streaming chat turn. The returned channel yields ordered
// deltas and closes after a single terminal event. Cancelling ctx aborts the
// stream; the caller decides what happens to the partial text (this service
// discards it).
func (o *Orchestrator) AskStream(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	scope Scope,
	history []*entity.ChatMessage,
	question string,
) (<-chan StreamEvent, error) {

	req, results, err := o.prepare(ctx, uow, scope, history, question)
	if err != nil {
		return nil, err
	}

	upstream, err := o.provider.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)

		// The consumer can vanish mid-stream (SSE client disconnect), so
		// every send must also watch ctx or the relay leaks.
		send := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var full string
		for ev := range upstream {
			if ev.Err != nil {
				send(StreamEvent{Err: ev.Err})
				return
			}
			if ev.Done {
				send(StreamEvent{
					Done:         true,
					Citations:    extractCitations(full, results),
					Sources:      results,
					InputTokens:  ev.InputTokens,
					OutputTokens: ev.OutputTokens,
				})
				return
			}
			full += ev.Delta
			if !send(StreamEvent{Delta: ev.Delta}) {
				return
			}
		}

		// Upstream closed without a terminal event.
		o.logger.Warn("chat stream ended without terminal event")
		send(StreamEvent{
			Done:      true,
			Citations: extractCitations(full, results),
			Sources:   results,
		})
	}()

	return events, nil
}
