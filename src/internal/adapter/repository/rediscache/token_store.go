package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "openfinance:token:"

// TokenStore shares access tokens between processes using the same client
// credentials. Entries expire with the token.
type TokenStore struct {
	rc  *redis.Client
	now func() time.Time
}

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func NewTokenStore(rc *redis.Client) *TokenStore {
	return &TokenStore{rc: rc, now: time.Now}
}

func (s *TokenStore) Ping(ctx context.Context) error {
	if err := s.rc.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, clientID string) (domain.Token, error) {
	raw, err := s.rc.Get(ctx, key(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Token{}, commons.ErrRecordNotFound
		}
		return domain.Token{}, fmt.Errorf("get cached token: %w", err)
	}

	var token domain.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		logger.Warn("discarding unreadable cached token", logger.Fields{"clientId": clientID})
		return domain.Token{}, commons.ErrRecordNotFound
	}
	return token, nil
}

func (s *TokenStore) Put(ctx context.Context, clientID string, token domain.Token) error {
	ttl := token.ExpiresAt().Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := s.rc.Set(ctx, key(clientID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache token: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context, clientID string) error {
	if err := s.rc.Del(ctx, key(clientID)).Err(); err != nil {
		return fmt.Errorf("delete cached token: %w", err)
	}
	return nil
}

func (s *TokenStore) Close() error {
	return s.rc.Close()
}

func key(clientID string) string {
	return keyPrefix + clientID
}
