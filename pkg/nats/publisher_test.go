package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"symptom-checker-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "symptom.events.SESSION_CREATED", Subject(events.SessionCreated))
}

func TestNewPublisher_RequiresURL(t *testing.T) {
	_, err := NewPublisher("")
	assert.Error(t, err)
}

func TestPublisher_Integration(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping integration test: NATS_URL not set")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync(Subject(events.GuestAnalysis))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pub.Publish(ctx, events.New(events.GuestAnalysis, map[string]interface{}{"has_analysis": true})))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	evt, err := events.Unmarshal(msg.Data)
	require.NoError(t, err)
	assert.Equal(t, events.GuestAnalysis, evt.EventType())
	assert.Equal(t, true, evt.Payload()["has_analysis"])
}
