package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"policy-intel-be/internal/pkg/logger"
	"policy-intel-be/internal/pkg/mailer"
	internalWS "policy-intel-be/internal/websocket"
	"policy-intel-be/pkg/events"
	pktNats "policy-intel-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService bridges the event bus to connected clients. Every
// pipeline event is fanned out to the owning tenant's websockets; review
// requests additionally go to the review inbox by email.
type NotificationService struct {
	subscriber  *pktNats.Subscriber
	hub         *internalWS.Hub
	mailer      mailer.IEmailService
	reviewInbox string
	logger      logger.ILogger
}

func NewNotificationService(
	sub *pktNats.Subscriber,
	hub *internalWS.Hub,
	emailService mailer.IEmailService,
	reviewInbox string,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		subscriber:  sub,
		hub:         hub,
		mailer:      emailService,
		reviewInbox: reviewInbox,
		logger:      log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	tenantId, ok := s.tenantFromPayload(payload)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s has no tenant_id, dropping", event.EventType()), nil)
		return nil
	}

	frame, err := json.Marshal(map[string]interface{}{
		"type":      event.EventType(),
		"data":      payload,
		"timestamp": event.Timestamp().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendToTenant(tenantId, frame)
	}

	if event.EventType() == events.TypeReviewRequested {
		s.sendReviewEmail(payload)
	}

	return nil
}

func (s *NotificationService) tenantFromPayload(payload map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := payload["tenant_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	tenantId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return tenantId, true
}

func (s *NotificationService) sendReviewEmail(payload map[string]interface{}) {
	if s.mailer == nil || s.reviewInbox == "" {
		return
	}

	documentId, _ := payload["document_id"].(string)
	fileName, _ := payload["file_name"].(string)
	confidence, _ := payload["confidence"].(float64)

	if err := s.mailer.SendReviewRequested(s.reviewInbox, documentId, fileName, confidence); err != nil {
		// Email is best-effort; the websocket event already went out.
		s.logger.Error("NotificationService", "Failed to send review email", map[string]interface{}{
			"error":       err.Error(),
			"document_id": documentId,
		})
	}
}
