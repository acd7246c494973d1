package domain

import "time"

// DefaultTokenLifetime applies when the server omits expires_in.
const DefaultTokenLifetime = 5 * time.Minute

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Scope       string    `json:"scope,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (t Token) ExpiresAt() time.Time {
	if t.ExpiresIn <= 0 {
		return t.IssuedAt.Add(DefaultTokenLifetime)
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the token is unusable at now, treating it as
// expired skew early.
func (t Token) Expired(now time.Time, skew time.Duration) bool {
	if t.AccessToken == "" {
		return true
	}
	return !now.Add(skew).Before(t.ExpiresAt())
}
