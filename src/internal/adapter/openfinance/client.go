package openfinance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/certs"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/config"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20

	HeaderInteractionID  = "x-fapi-interaction-id"
	HeaderIdempotencyKey = "x-idempotency-key"
)

type ClientConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	Timeout      time.Duration
	TLS          certs.Source

	// HTTPClient replaces the mTLS client built from TLS and Timeout.
	HTTPClient *http.Client
}

type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client
	now          func() time.Time
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &commons.SetupError{Op: "parse API base URL", Err: err}
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/token"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		tlsConfig, err := certs.TLSConfig(cfg.TLS)
		if err != nil {
			return nil, &commons.SetupError{Op: "load transport certificate", Err: err}
		}

		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     tlsConfig,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}
	}

	return &Client{
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: cfg.ClientSecret,
		scope:        strings.TrimSpace(cfg.Scope),
		httpClient:   httpClient,
		now:          time.Now,
	}, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	token   string
	json    any
	form    url.Values
	headers http.Header
}

// do sends req and decodes the response into out. The body is unwrapped from
// a top-level "data" envelope when present; listKey names the array field to
// look for inside objects returned by list endpoints.
func (c *Client) do(ctx context.Context, req request, listKey string, out any) error {
	target := req.path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + req.path
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
		payload     any
	)
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
		payload = req.form
	case req.json != nil:
		raw, err := json.Marshal(req.json)
		if err != nil {
			return &commons.SetupError{Op: fmt.Sprintf("encode %s %s body", req.method, req.path), Err: err}
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
		payload = req.json
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return &commons.SetupError{Op: fmt.Sprintf("build %s %s request", req.method, req.path), Err: err}
	}

	interactionID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderInteractionID, interactionID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, values := range req.headers {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	logger.Info("open finance request", logger.Fields{
		"method":        req.method,
		"path":          req.path,
		"interactionId": interactionID,
		"payload":       logger.SanitizePayload(payload),
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("open finance request got no response", err, logger.Fields{
			"method":        req.method,
			"path":          req.path,
			"interactionId": interactionID,
		})
		return &commons.TransportError{Method: req.method, Path: req.path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Error("open finance response body unreadable", err, logger.Fields{
			"method": req.method,
			"path":   req.path,
			"status": resp.StatusCode,
		})
		return &commons.TransportError{Method: req.method, Path: req.path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &commons.APIError{
			Method:     req.method,
			Path:       req.path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
			Body:       strings.TrimSpace(string(raw)),
		}
		logger.Error("open finance error response", apiErr, logger.Fields{
			"method":        req.method,
			"path":          req.path,
			"status":        resp.StatusCode,
			"interactionId": interactionID,
			"durationMs":    time.Since(start).Milliseconds(),
		})
		return apiErr
	}

	logger.Info("open finance response", logger.Fields{
		"method":        req.method,
		"path":          req.path,
		"status":        resp.StatusCode,
		"interactionId": interactionID,
		"durationMs":    time.Since(start).Milliseconds(),
	})

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(unwrap(raw, listKey), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

func unwrap(body []byte, listKey string) []byte {
	if listKey != "" {
		for _, path := range []string{"data." + listKey, listKey} {
			if r := gjson.GetBytes(body, path); r.Exists() && r.IsArray() {
				return []byte(r.Raw)
			}
		}
	}

	if r := gjson.GetBytes(body, "data"); r.Exists() && (r.IsObject() || r.IsArray() || r.Type == gjson.Null) {
		return []byte(r.Raw)
	}
	return body
}

func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	var msg string
	for _, path := range []string{"error_description", "message", "errors.0.detail", "error.message", "error"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
			msg = r.String()
			break
		}
	}

	if detail := gjson.GetBytes(body, "errors.0"); detail.Type == gjson.String && detail.String() != "" && detail.String() != msg {
		if msg == "" {
			return detail.String()
		}
		return msg + ": " + detail.String()
	}
	return msg
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}

// ClientConfigFrom maps loaded settings onto a ClientConfig.
func ClientConfigFrom(cfg config.Config) ClientConfig {
	return ClientConfig{
		BaseURL:      cfg.BaseURL,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.Scope,
		Timeout:      cfg.HTTPTimeout,
		TLS: certs.Source{
			CertPath:    cfg.TransportCertPath,
			KeyPath:     cfg.TransportKeyPath,
			P12Path:     cfg.TransportP12Path,
			P12Password: cfg.TransportP12Password,
			CAPath:      cfg.CACertPath,
		},
	}
}
