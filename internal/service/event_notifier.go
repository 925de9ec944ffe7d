package service

import (
	"context"

	"policy-intel-be/internal/pkg/logger"
	"policy-intel-be/pkg/events"
	pktNats "policy-intel-be/pkg/nats"
	"policy-intel-be/pkg/pipeline"
)

// eventNotifier forwards pipeline events onto the NATS bus, where the
// notification service picks them up. It satisfies pipeline.Notifier; publish
// failures are logged and swallowed so the run never depends on the bus.
type eventNotifier struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewEventNotifier(publisher *pktNats.Publisher, log logger.ILogger) pipeline.Notifier {
	return &eventNotifier{
		publisher: publisher,
		logger:    log,
	}
}

func (n *eventNotifier) PublishProgress(ctx context.Context, event pipeline.ProgressEvent) {
	if n.publisher == nil {
		return
	}

	evt := events.NewDocumentProgress(
		event.DocumentId.String(),
		event.TenantId.String(),
		event.Stage,
		event.ProgressPercent,
		event.Message,
	)
	if err := n.publisher.Publish(ctx, evt); err != nil {
		n.logger.Warn("EventNotifier", "Failed to publish progress event", map[string]interface{}{
			"error":       err.Error(),
			"document_id": event.DocumentId,
		})
	}
}

func (n *eventNotifier) PublishCompletion(ctx context.Context, event pipeline.CompletionEvent) {
	if n.publisher == nil {
		return
	}

	var evt events.Event
	if event.Success {
		policyId := ""
		if event.PolicyId != nil {
			policyId = event.PolicyId.String()
		}
		evt = events.NewDocumentCompleted(
			event.DocumentId.String(),
			event.TenantId.String(),
			policyId,
			event.CoverageCount,
			event.Confidence,
			event.NeedsHumanReview,
		)
	} else {
		evt = events.NewDocumentFailed(
			event.DocumentId.String(),
			event.TenantId.String(),
			event.Error,
		)
	}

	if err := n.publisher.Publish(ctx, evt); err != nil {
		n.logger.Warn("EventNotifier", "Failed to publish completion event", map[string]interface{}{
			"error":       err.Error(),
			"document_id": event.DocumentId,
		})
		return
	}

	if event.Success && event.NeedsHumanReview {
		review := events.NewReviewRequested(
			event.DocumentId.String(),
			event.TenantId.String(),
			event.FileName,
			event.Confidence,
		)
		if err := n.publisher.Publish(ctx, review); err != nil {
			n.logger.Warn("EventNotifier", "Failed to publish review request", map[string]interface{}{
				"error":       err.Error(),
				"document_id": event.DocumentId,
			})
		}
	}
}
