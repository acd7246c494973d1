package openfinance_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
)

func TestRequestTokenReturnsMockedTokenAndExpiry(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/oauth/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("expected client_credentials grant, got %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("client_id") != "kit-client" || r.PostForm.Get("client_secret") != "kit-secret" {
			t.Errorf("unexpected credentials %v", r.PostForm)
		}
		if r.PostForm.Get("scope") != "accounts payments" {
			t.Errorf("unexpected scope %q", r.PostForm.Get("scope"))
		}
		writeBody(w, http.StatusOK, `{"access_token":"sandbox-token-1","token_type":"Bearer","expires_in":3600,"scope":"accounts payments"}`)
	})

	token, err := client.RequestToken(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token.AccessToken != "sandbox-token-1" {
		t.Fatalf("expected mocked token, got %q", token.AccessToken)
	}
	if token.ExpiresIn != 3600 {
		t.Fatalf("expected expiry 3600, got %d", token.ExpiresIn)
	}
	if token.IssuedAt.IsZero() {
		t.Fatal("expected issue time recorded")
	}
}

func TestRequestTokenSurfacesOAuthError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"error":"invalid_client","error_description":"client authentication failed"}`)
	})

	_, err := client.RequestToken(context.Background())
	var apiErr *commons.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "client authentication failed" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestRequestTokenRejectsEmptyToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"token_type":"Bearer","expires_in":60}`)
	})

	if _, err := client.RequestToken(context.Background()); err == nil {
		t.Fatal("expected error for response without access_token")
	}
}
