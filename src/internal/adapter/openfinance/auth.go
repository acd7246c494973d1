package openfinance

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// RequestToken performs the OAuth2 client-credentials grant.
func (c *Client) RequestToken(ctx context.Context) (domain.Token, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return domain.Token{}, &commons.SetupError{Op: "request token", Err: errors.New("client id and secret are required")}
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")
	if c.scope != "" {
		form.Set("scope", c.scope)
	}

	var resp models.TokenResponse
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.tokenURL,
		form:   form,
	}, "", &resp); err != nil {
		return domain.Token{}, err
	}

	if resp.AccessToken == "" {
		return domain.Token{}, errors.New("token response has no access_token")
	}

	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return domain.Token{
		AccessToken: resp.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   resp.ExpiresIn,
		Scope:       resp.Scope,
		IssuedAt:    c.now().UTC(),
	}, nil
}
