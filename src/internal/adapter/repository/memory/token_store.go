package memory

import (
	"context"
	"sync"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.Token
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]domain.Token)}
}

func (s *TokenStore) Get(_ context.Context, clientID string) (domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[clientID]
	if !ok {
		return domain.Token{}, commons.ErrRecordNotFound
	}
	return token, nil
}

func (s *TokenStore) Put(_ context.Context, clientID string, token domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[clientID] = token
	return nil
}

func (s *TokenStore) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, clientID)
	return nil
}
