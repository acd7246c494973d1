package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
)

const (
	DefaultTokenSkew   = 30 * time.Second
	minRefreshInterval = time.Second
	refreshRetryDelay  = 5 * time.Second
)

var _ service_interfaces.TokenProvider = (*TokenProvider)(nil)

// TokenProvider owns the access token for one client. Callers share a
// single in-flight fetch; the cached token is replaced skew before expiry.
type TokenProvider struct {
	auth     openfinance.AuthAPI
	store    repo_interfaces.TokenStore
	clientID string
	skew     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	current domain.Token

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTokenProvider builds a provider. store may be nil, in which case the
// token lives only in memory for the life of the provider.
func NewTokenProvider(auth openfinance.AuthAPI, store repo_interfaces.TokenStore, clientID string, skew time.Duration) *TokenProvider {
	if skew < 0 {
		skew = DefaultTokenSkew
	}
	return &TokenProvider{
		auth:     auth,
		store:    store,
		clientID: clientID,
		skew:     skew,
		now:      time.Now,
	}
}

func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	token, err := p.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (p *TokenProvider) Token(ctx context.Context) (domain.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.current.Expired(now, p.skew) {
		return p.current, nil
	}

	if p.store != nil {
		cached, err := p.store.Get(ctx, p.clientID)
		switch {
		case err == nil && !cached.Expired(now, p.skew):
			p.current = cached
			logger.Debug("access token loaded from store", logger.Fields{
				"clientId":  p.clientID,
				"expiresAt": cached.ExpiresAt(),
			})
			return cached, nil
		case err != nil && !errors.Is(err, commons.ErrRecordNotFound):
			logger.Warn("token store read failed", logger.Fields{"clientId": p.clientID, "error": err.Error()})
		}
	}

	return p.refreshLocked(ctx)
}

// Invalidate drops the cached token so the next call fetches a new one.
func (p *TokenProvider) Invalidate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = domain.Token{}
	if p.store != nil {
		if err := p.store.Delete(ctx, p.clientID); err != nil {
			logger.Warn("token store delete failed", logger.Fields{"clientId": p.clientID, "error": err.Error()})
		}
	}
}

// Start launches a goroutine that keeps the token fresh until ctx is done or
// Stop is called. Calling Start twice is a no-op.
func (p *TokenProvider) Start(ctx context.Context) {
	p.loopMu.Lock()
	defer p.loopMu.Unlock()

	if p.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.refreshLoop(loopCtx, p.done)
}

// Running reports whether the refresh goroutine is active.
func (p *TokenProvider) Running() bool {
	p.loopMu.Lock()
	defer p.loopMu.Unlock()
	return p.cancel != nil
}

// Stop cancels the refresh goroutine and waits for it to exit.
func (p *TokenProvider) Stop() {
	p.loopMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *TokenProvider) refreshLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(p.nextRefresh())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p.mu.Lock()
		_, err := p.refreshLocked(ctx)
		p.mu.Unlock()

		wait := p.nextRefresh()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("background token refresh failed", err, logger.Fields{"clientId": p.clientID})
			wait = refreshRetryDelay
		}
		timer.Reset(wait)
	}
}

func (p *TokenProvider) nextRefresh() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current.AccessToken == "" {
		return 0
	}
	wait := p.current.ExpiresAt().Add(-p.skew).Sub(p.now())
	if wait < minRefreshInterval {
		return minRefreshInterval
	}
	return wait
}

func (p *TokenProvider) refreshLocked(ctx context.Context) (domain.Token, error) {
	token, err := p.auth.RequestToken(ctx)
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: request access token: %w", commons.ErrTokenUnavailable, err)
	}
	p.current = token

	if p.store != nil {
		if err := p.store.Put(ctx, p.clientID, token); err != nil {
			logger.Warn("token store write failed", logger.Fields{"clientId": p.clientID, "error": err.Error()})
		}
	}

	logger.Info("access token refreshed", logger.Fields{
		"clientId":  p.clientID,
		"expiresIn": token.ExpiresIn,
		"scope":     token.Scope,
	})
	return token, nil
}
