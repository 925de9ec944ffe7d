package service

import (
	"context"
	"encoding/json"
	"errors"

	"policy-intel-be/internal/dto"
	"policy-intel-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// documentRunner is the slice of the pipeline runner the consumer needs.
type documentRunner interface {
	Run(ctx context.Context, req pipeline.Request) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	runner    documentRunner
	logger    *zap.Logger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	runner documentRunner,
	logger *zap.Logger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		runner:    runner,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.dispatch(ctx, msg)
		}
	}()

	return nil
}

// dispatch acks the message and hands the document to its own goroutine.
// The gochannel subscriber withholds the next message until the current one
// is acked, so acking must not wait for the run. Every run outcome is
// terminal (the runner marks failures and publishes the terminal event), so
// nothing here would ever redeliver.
func (cs *consumerService) dispatch(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("failed to unmarshal pipeline message", zap.Error(err))
		msg.Ack() // invalid payloads will never succeed; do not retry
		return
	}

	msg.Ack()
	go cs.runDocument(ctx, payload)
}

func (cs *consumerService) runDocument(ctx context.Context, payload dto.ProcessDocumentMessage) {
	cs.logger.Info("processing document",
		zap.String("document_id", payload.DocumentId.String()),
		zap.String("file_name", payload.FileName),
	)

	err := cs.runner.Run(ctx, pipeline.Request{
		DocumentId: payload.DocumentId,
		TenantId:   payload.TenantId,
		FileName:   payload.FileName,
		FilePath:   payload.FilePath,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrAlreadyProcessing) {
			cs.logger.Warn("document already processing, dropping duplicate",
				zap.String("document_id", payload.DocumentId.String()),
			)
			return
		}
		cs.logger.Error("pipeline run failed",
			zap.String("document_id", payload.DocumentId.String()),
			zap.Error(err),
		)
	}
}
