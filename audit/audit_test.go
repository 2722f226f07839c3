package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/aqaar/audit"
	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/core/query"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("AST", 3*3600))
	ctx, _ := logger.ContextWithLogger(context.Background())
	ctx = (&access.Session{Email: "owner@aqaar.sa"}).ContextWithSession(ctx)

	e := audit.NewEvent(ctx, query.Settled{Label: "admins.toggle", Keys: []string{"admins"}, At: at})
	assert.Equal(t, "admins.toggle", e.Label)
	assert.Equal(t, audit.OutcomeSuccess, e.Outcome)
	assert.Empty(t, e.Error)
	assert.Equal(t, "owner@aqaar.sa", e.Subject)
	assert.Equal(t, logger.RequestIDFromContext(ctx), e.RequestID)
	assert.Equal(t, at.UTC(), e.At)
	assert.NotEqual(t, e.ID, audit.NewEvent(ctx, query.Settled{}).ID)

	e = audit.NewEvent(context.Background(), query.Settled{Label: "properties.approve", Err: errors.New("Property is not pending")})
	assert.Equal(t, audit.OutcomeFailure, e.Outcome)
	assert.Equal(t, "Property is not pending", e.Error)
	assert.Empty(t, e.Subject)
	assert.Equal(t, []string{}, e.Keys)
}

func TestPublisher(t *testing.T) {
	w := &recordingWriter{}
	p := audit.NewPublisherWithWriter(w)

	cache := query.New(nil, nil)
	cache.Observe(p)
	err := cache.Mutate(context.Background(), query.Mutation{
		Label:      "realOwners.delete",
		Invalidate: []string{"real-owners"},
		Do:         func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "realOwners.delete", string(msg.Key))
	var e audit.Event
	require.NoError(t, json.Unmarshal(msg.Value, &e))
	assert.Equal(t, "realOwners.delete", e.Label)
	assert.Equal(t, []string{"real-owners"}, e.Keys)
	assert.Equal(t, audit.OutcomeSuccess, e.Outcome)
	assert.Equal(t, []kafka.Header{{Key: "outcome", Value: []byte(audit.OutcomeSuccess)}}, msg.Headers)

	// failing writes do not fail the mutation
	w.err = errors.New("broker down")
	err = cache.Mutate(context.Background(), query.Mutation{
		Label: "realOwners.create",
		Do:    func(ctx context.Context) error { return nil },
	})
	assert.NoError(t, err)
	assert.Len(t, w.messages, 1)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewWriter(t *testing.T) {
	w := audit.NewWriter([]string{"localhost:9092"}, "aqaar-owner-actions")
	defer w.Close()
	assert.Equal(t, "aqaar-owner-actions", w.Topic)
	assert.Equal(t, 1, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
}

func TestNew(t *testing.T) {
	sink, err := audit.New(" ", "topic")
	require.NoError(t, err)
	assert.IsType(t, audit.LogPublisher{}, sink)
	sink.Settled(context.Background(), query.Settled{Label: "admins.delete", Err: errors.New("gone")})
	assert.NoError(t, sink.Close())

	sink, err = audit.New("localhost:9092, localhost:9093", "aqaar-owner-actions")
	require.NoError(t, err)
	assert.IsType(t, &audit.Publisher{}, sink)
	assert.NoError(t, sink.Close())

	_, err = audit.NewPublisher(",", "topic")
	assert.Error(t, err)
	_, err = audit.NewPublisher("localhost:9092", "")
	assert.Error(t, err)
}
