package messaging

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.PaymentEvent) error
	Close() error
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, domain.PaymentEvent) error { return nil }

func (Noop) Close() error { return nil }
