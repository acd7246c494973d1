package repo_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// TokenStore caches access tokens per client id. Get returns
// commons.ErrRecordNotFound when nothing usable is stored.
type TokenStore interface {
	Get(ctx context.Context, clientID string) (domain.Token, error)
	Put(ctx context.Context, clientID string, token domain.Token) error
	Delete(ctx context.Context, clientID string) error
}
