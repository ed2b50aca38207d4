package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const (
	DefaultSubject    = "documents.ingested"
	DefaultQueueGroup = "summarizer-workers"

	defaultDrainTimeout = 30 * time.Second
	drainPollInterval   = 50 * time.Millisecond
)

// Queue carries "document stored" events from the API to the workers.
// Payloads are the bare document id.
type Queue struct {
	conn     *nats.Conn
	subject  string
	group    string
	drain    time.Duration
	executor *resilience.Executor
	logger   *slog.Logger
}

type settings struct {
	connectTimeout time.Duration
	reconnectWait  time.Duration
	maxReconnects  int
	group          string
	drainTimeout   time.Duration
	executor       *resilience.Executor
	logger         *slog.Logger
}

type Option func(*settings)

// WithExecutor routes publishes through retries and a circuit breaker.
func WithExecutor(executor *resilience.Executor) Option {
	return func(s *settings) { s.executor = executor }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithReconnect(wait time.Duration, maxAttempts int) Option {
	return func(s *settings) {
		if wait > 0 {
			s.reconnectWait = wait
		}
		if maxAttempts > 0 {
			s.maxReconnects = maxAttempts
		}
	}
}

// WithQueueGroup changes the group workers share; each event reaches one member.
func WithQueueGroup(group string) Option {
	return func(s *settings) {
		if g := strings.TrimSpace(group); g != "" {
			s.group = g
		}
	}
}

// WithDrainTimeout bounds how long shutdown waits for delivered messages.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.drainTimeout = d
		}
	}
}

func New(url, subject string, opts ...Option) (*Queue, error) {
	s := settings{
		connectTimeout: 2 * time.Second,
		reconnectWait:  2 * time.Second,
		maxReconnects:  60,
		group:          DefaultQueueGroup,
		drainTimeout:   defaultDrainTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}

	logger := s.logger.With("subject", subject)
	conn, err := nats.Connect(url,
		nats.Name("document-summarizer"),
		nats.Timeout(s.connectTimeout),
		nats.ReconnectWait(s.reconnectWait),
		nats.MaxReconnects(s.maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("queue_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("queue_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return &Queue{
		conn:     conn,
		subject:  subject,
		group:    s.group,
		drain:    s.drainTimeout,
		executor: s.executor,
		logger:   logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	publish := func(context.Context) error {
		return q.conn.Publish(q.subject, []byte(documentID))
	}

	var err error
	if q.executor == nil {
		err = publish(ctx)
	} else {
		err = q.executor.Execute(ctx, publishOp, publish, classifyPublishError)
	}
	return asPublishError(err)
}

// SubscribeDocumentIngested blocks until ctx is done. Shutdown then stops
// new deliveries and waits for messages already handed to this worker.
// Handlers run on a context that outlives ctx, so the caller bounds each job
// with its own timeout. Handler errors are logged; the event is not
// redelivered.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.group, func(msg *nats.Msg) {
		q.dispatch(ctx, strings.TrimSpace(string(msg.Data)), handler)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", q.subject, err)
	}
	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("flush subscription: %w", err)
	}
	q.logger.Info("queue_subscribed", "group", q.group)

	<-ctx.Done()
	return q.drainSubscription(sub)
}

func (q *Queue) dispatch(ctx context.Context, documentID string, handler func(context.Context, string) error) {
	if documentID == "" {
		q.logger.Warn("queue_empty_message")
		return
	}
	if err := handler(context.WithoutCancel(ctx), documentID); err != nil {
		q.logger.Error("queue_handler_failed", "document_id", documentID, "error", err)
	}
}

// drainSubscription waits until every pending message has been handled or
// the drain timeout passes.
func (q *Queue) drainSubscription(sub *nats.Subscription) error {
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	deadline := time.Now().Add(q.drain)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			return fmt.Errorf("drain subscription: pending messages left after %s", q.drain)
		}
		time.Sleep(drainPollInterval)
	}
	q.logger.Info("queue_drained")
	return nil
}
