package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// ProgressEvent is one ordered stage update for a document run.
type ProgressEvent struct {
	DocumentId      uuid.UUID `json:"document_id"`
	TenantId        uuid.UUID `json:"tenant_id"`
	Stage           string    `json:"stage"`
	ProgressPercent int       `json:"progress_percent"`
	Message         string    `json:"message"`
}

// CompletionEvent is the terminal event for a document run.
type CompletionEvent struct {
	DocumentId       uuid.UUID  `json:"document_id"`
	TenantId         uuid.UUID  `json:"tenant_id"`
	FileName         string     `json:"file_name"`
	Success          bool       `json:"success"`
	Error            string     `json:"error,omitempty"`
	PolicyId         *uuid.UUID `json:"policy_id,omitempty"`
	CoverageCount    int        `json:"coverage_count"`
	Confidence       float64    `json:"confidence"`
	NeedsHumanReview bool       `json:"needs_human_review"`
}

// Notifier receives pipeline events. Delivery is best-effort; a notifier
// failure never fails the run.
type Notifier interface {
	PublishProgress(ctx context.Context, event ProgressEvent)
	PublishCompletion(ctx context.Context, event CompletionEvent)
}

// NopNotifier drops all events.
type NopNotifier struct{}

func (NopNotifier) PublishProgress(context.Context, ProgressEvent)     {}
func (NopNotifier) PublishCompletion(context.Context, CompletionEvent) {}
