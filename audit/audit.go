// Package audit publishes the actions of the owner, for example approving a property,
// as an audit trail.
//
// Publishers observe the mutations of the query cache. Every settled mutation becomes
// one Event, written to a Kafka topic by Publisher or to the log by LogPublisher.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/relabs-tech/aqaar/core/access"
	"github.com/relabs-tech/aqaar/core/logger"
	"github.com/relabs-tech/aqaar/core/query"
)

// Outcomes of a mutation
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is one settled owner action
type Event struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Keys      []string  `json:"keys"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	At        time.Time `json:"at"`
}

// NewEvent describes s. The subject is the email of the session in ctx, or the
// identity of the context logger.
func NewEvent(ctx context.Context, s query.Settled) Event {
	e := Event{
		ID:        uuid.New(),
		Label:     s.Label,
		Keys:      s.Keys,
		Outcome:   OutcomeSuccess,
		RequestID: logger.RequestIDFromContext(ctx),
		At:        s.At.UTC(),
	}
	if e.Keys == nil {
		e.Keys = []string{}
	}
	if s.Err != nil {
		e.Outcome = OutcomeFailure
		e.Error = s.Err.Error()
	}
	if session := access.SessionFromContext(ctx); session != nil {
		e.Subject = session.Email
	}
	if e.Subject == "" {
		e.Subject = logger.IdentityFromContext(ctx)
	}
	return e
}

// MessageWriter writes messages to Kafka. *kafka.Writer implements it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a Kafka topic. The message key is the label of the
// mutation, so the actions of one kind stay in order.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// DefaultTimeout bounds the write of one event
const DefaultTimeout = 5 * time.Second

// NewPublisher creates a publisher for topic on the comma separated brokers
func NewPublisher(brokers, topic string) (*Publisher, error) {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no kafka brokers in '%s'", brokers)
	}
	if topic == "" {
		return nil, fmt.Errorf("no kafka topic")
	}
	return NewPublisherWithWriter(NewWriter(addrs, topic)), nil
}

// NewWriter creates the Kafka writer of a publisher. Every event is written as its
// own batch, a settled mutation waits only for its own acknowledgement.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisherWithWriter creates a publisher on top of w
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w, timeout: DefaultTimeout}
}

// Publish writes e
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cannot encode audit event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Label),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "outcome", Value: []byte(e.Outcome)},
		},
	})
}

// Settled publishes the mutation. Failing writes are logged and otherwise ignored,
// the audit trail never fails an action of the owner.
func (p *Publisher) Settled(ctx context.Context, s query.Settled) {
	e := NewEvent(ctx, s)
	if err := p.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("label", e.Label).Warnln("cannot publish audit event")
	}
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the context logger
type LogPublisher struct{}

// Settled logs the mutation
func (LogPublisher) Settled(ctx context.Context, s query.Settled) {
	e := NewEvent(ctx, s)
	rlog := logger.FromContext(ctx).WithField("audit", e.Label).WithField("outcome", e.Outcome)
	if e.Error != "" {
		rlog = rlog.WithField("error", e.Error)
	}
	rlog.Infof("owner action on %s", strings.Join(e.Keys, ", "))
}

// Close does nothing
func (LogPublisher) Close() error {
	return nil
}

// Sink is an observer which must be closed at exit
type Sink interface {
	query.Observer
	Close() error
}

// New returns a Kafka publisher if brokers are configured and a LogPublisher
// otherwise
func New(brokers, topic string) (Sink, error) {
	if strings.TrimSpace(brokers) == "" {
		return LogPublisher{}, nil
	}
	return NewPublisher(brokers, topic)
}
