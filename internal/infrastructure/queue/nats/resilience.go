package nats

import (
	"context"
	"errors"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const publishOp = "nats.publish"

// connectivityErrors are the broker states a later publish can recover from.
var connectivityErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
	nats.ErrNoResponders,
}

func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.Ignored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Ignored
	case resilience.IsCircuitOpen(err), isConnectivity(err):
		return resilience.Transient
	default:
		return resilience.Permanent
	}
}

func isConnectivity(err error) bool {
	for _, target := range connectivityErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// asPublishError tags broker outages as temporary so the upload handler
// answers 503 instead of 500.
func asPublishError(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, publishOp, err)
	}
	return domain.WrapError(domain.ErrUpload, publishOp, err)
}
