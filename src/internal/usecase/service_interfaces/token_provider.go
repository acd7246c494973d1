package service_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// TokenSource hands out a bearer token for the next API call.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type TokenProvider interface {
	TokenSource
	Token(ctx context.Context) (domain.Token, error)
	Invalidate(ctx context.Context)
	Start(ctx context.Context)
	Stop()
}
