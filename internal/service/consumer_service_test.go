package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"symptom-checker-be/internal/pkg/logger"
	"symptom-checker-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditEntry struct {
	module  string
	message string
	details map[string]interface{}
}

// recordingLogger keeps Info entries; other levels are dropped.
type recordingLogger struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (l *recordingLogger) Debug(string, string, map[string]interface{}) {}
func (l *recordingLogger) Warn(string, string, map[string]interface{})  {}
func (l *recordingLogger) Error(string, string, map[string]interface{}) {}
func (l *recordingLogger) Sync() error                                  { return nil }

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, auditEntry{module, message, details})
}

func (l *recordingLogger) snapshot() []auditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]auditEntry(nil), l.entries...)
}

func TestEventPipeline_AuditAndForward(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	audit := &recordingLogger{}
	forwarded := &recordingPublisher{}
	consumer := NewConsumerService(pubSub, "test.events", audit, logger.NewNopLogger(), forwarded)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("test.events", pubSub)
	require.NoError(t, publisher.Publish(ctx, events.New(events.SessionCreated, map[string]interface{}{
		"session_id": "65a1b2c3d4e5f60718293a4b",
	})))

	require.Eventually(t, func() bool {
		return len(audit.snapshot()) == 1 && len(forwarded.types()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := audit.snapshot()[0]
	assert.Equal(t, "AUDIT", entry.module)
	assert.Equal(t, events.SessionCreated, entry.message)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", entry.details["session_id"])
	assert.Contains(t, entry.details, "occurred_at")
	assert.Equal(t, []string{events.SessionCreated}, forwarded.types())
}
