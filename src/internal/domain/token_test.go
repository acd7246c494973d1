package domain

import (
	"testing"
	"time"
)

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := Token{AccessToken: "abc", ExpiresIn: 300, IssuedAt: issued}

	if token.Expired(issued.Add(4*time.Minute), 30*time.Second) {
		t.Fatal("expected token valid four minutes in")
	}
	if !token.Expired(issued.Add(4*time.Minute+31*time.Second), 30*time.Second) {
		t.Fatal("expected token expired inside the skew window")
	}
	if !(Token{ExpiresIn: 300, IssuedAt: issued}).Expired(issued, 0) {
		t.Fatal("expected empty token to count as expired")
	}
}

func TestTokenWithoutExpiryUsesDefaultLifetime(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := Token{AccessToken: "abc", IssuedAt: issued}

	if got := token.ExpiresAt(); !got.Equal(issued.Add(DefaultTokenLifetime)) {
		t.Fatalf("expected expiry %s, got %s", issued.Add(DefaultTokenLifetime), got)
	}
	if token.Expired(issued.Add(time.Minute), 30*time.Second) {
		t.Fatal("expected token without expires_in to stay valid a minute in")
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	terminal := []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRejected, PaymentStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s terminal", s)
		}
	}

	inFlight := []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusAwaitingAuthorization, "ACSP"}
	for _, s := range inFlight {
		if s.IsTerminal() {
			t.Errorf("expected %s not terminal", s)
		}
	}
}
