package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"policy-intel-be/internal/dto"
	"policy-intel-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingRunner reports each started run, then holds it until released.
type blockingRunner struct {
	started chan uuid.UUID
	release chan struct{}
}

func (r *blockingRunner) Run(_ context.Context, req pipeline.Request) error {
	r.started <- req.DocumentId
	<-r.release
	return nil
}

func TestConsumeProcessesDocumentsConcurrently(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	runner := &blockingRunner{
		started: make(chan uuid.UUID, 2),
		release: make(chan struct{}),
	}
	defer close(runner.release)

	cs := NewConsumerService(pubSub, "documents.process.test", runner, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cs.Consume(ctx))

	for i := 0; i < 2; i++ {
		payload, err := json.Marshal(dto.ProcessDocumentMessage{
			DocumentId: uuid.New(),
			TenantId:   uuid.New(),
			FileName:   "policy.pdf",
			FilePath:   "/tmp/policy.pdf",
		})
		require.NoError(t, err)
		require.NoError(t, pubSub.Publish("documents.process.test", message.NewMessage(watermill.NewUUID(), payload)))
	}

	// Both documents must start while neither run has finished; a consumer
	// that waits for the first run would never deliver the second message.
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-runner.started:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 2 documents started processing", i)
		}
	}
	require.Len(t, seen, 2)
}
