package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/sandbox"
)

type TokenIssuer interface {
	IssueToken(clientID, clientSecret, grantType, scope string) (models.TokenResponse, error)
}

type TokenController struct {
	issuer TokenIssuer
}

func NewTokenController(issuer TokenIssuer) *TokenController {
	return &TokenController{issuer: issuer}
}

// RegisterRoutes mounts the token endpoint. It is never behind the bearer
// middleware.
func (c *TokenController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /oauth/token", c.issueToken)
}

func (c *TokenController) issueToken(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		logError(r, err, nil)
		c.writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error(), start)
		return
	}

	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.PostForm.Get("client_id")
		clientSecret = r.PostForm.Get("client_secret")
	}
	logRequest(r, map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"grant_type":    r.PostForm.Get("grant_type"),
		"scope":         r.PostForm.Get("scope"),
	})

	token, err := c.issuer.IssueToken(clientID, clientSecret, r.PostForm.Get("grant_type"), r.PostForm.Get("scope"))
	switch {
	case errors.Is(err, sandbox.ErrUnsupportedGrant):
		c.writeError(w, r, http.StatusBadRequest, "unsupported_grant_type", err.Error(), start)
		return
	case errors.Is(err, sandbox.ErrInvalidClient):
		c.writeError(w, r, http.StatusUnauthorized, "invalid_client", err.Error(), start)
		return
	case err != nil:
		logError(r, err, nil)
		c.writeError(w, r, http.StatusInternalServerError, "server_error", err.Error(), start)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, token)
	logResponse(r, http.StatusOK, token, start)
}

func (c *TokenController) writeError(w http.ResponseWriter, r *http.Request, status int, code, description string, start time.Time) {
	response := models.TokenErrorResponse{Error: code, ErrorDescription: description}
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}
