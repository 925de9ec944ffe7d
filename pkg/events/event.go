package events

import "time"

// Event type codes carried on the bus.
const (
	TypeDocumentProgress  = "DOCUMENT_PROGRESS"
	TypeDocumentCompleted = "DOCUMENT_COMPLETED"
	TypeDocumentFailed    = "DOCUMENT_FAILED"
	TypeReviewRequested   = "REVIEW_REQUESTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_PROGRESS").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentProgress builds the stage-update event for a document run.
func NewDocumentProgress(documentId, tenantId, stage string, percent int, message string) Event {
	return BaseEvent{
		Type: TypeDocumentProgress,
		Data: map[string]interface{}{
			"document_id":      documentId,
			"tenant_id":        tenantId,
			"stage":            stage,
			"progress_percent": percent,
			"message":          message,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentCompleted builds the terminal success event.
func NewDocumentCompleted(documentId, tenantId, policyId string, coverageCount int, confidence float64, needsReview bool) Event {
	return BaseEvent{
		Type: TypeDocumentCompleted,
		Data: map[string]interface{}{
			"document_id":        documentId,
			"tenant_id":          tenantId,
			"policy_id":          policyId,
			"coverage_count":     coverageCount,
			"confidence":         confidence,
			"needs_human_review": needsReview,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentFailed builds the terminal failure event.
func NewDocumentFailed(documentId, tenantId, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentId,
			"tenant_id":   tenantId,
			"error":       reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewReviewRequested marks a completed document that failed the confidence
// gate and needs a human pass.
func NewReviewRequested(documentId, tenantId, fileName string, confidence float64) Event {
	return BaseEvent{
		Type: TypeReviewRequested,
		Data: map[string]interface{}{
			"document_id": documentId,
			"tenant_id":   tenantId,
			"file_name":   fileName,
			"confidence":  confidence,
		},
		OccurredAt: time.Now(),
	}
}
