package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/config"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/testutil"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
)

func completeConfig(t *testing.T) config.Config {
	t.Helper()
	certPath, keyPath := testutil.WriteKeyPair(t, t.TempDir())
	return config.Config{
		ClientID:          "kit-client",
		ClientSecret:      "kit-secret",
		BaseURL:           "https://sandbox.example.com",
		TransportCertPath: certPath,
		TransportKeyPath:  keyPath,
	}
}

func authFactory(auth openfinance.AuthAPI) services.AuthFactory {
	return func() (openfinance.AuthAPI, error) { return auth, nil }
}

func findCheck(t *testing.T, report domain.CheckReport, group, name string) domain.Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.Group == group && c.Name == name {
			return c
		}
	}
	t.Fatalf("expected check %s/%s in report", group, name)
	return domain.Check{}
}

func TestConnectionCheckAllPass(t *testing.T) {
	auth := &authStub{requestFn: tokenIssuer(3600)}
	svc := services.NewConnectionCheckService(completeConfig(t), authFactory(auth))

	report := svc.Run(context.Background())
	if report.Failed() {
		t.Fatalf("expected no failures, got %+v", report.Checks)
	}
	if c := findCheck(t, report, services.CheckGroupAuth, "token request"); c.Status != domain.CheckPass {
		t.Fatalf("expected token request to pass, got %+v", c)
	}
	if c := findCheck(t, report, services.CheckGroupEnvironment, "OPENAI_API_KEY"); c.Status != domain.CheckWarn {
		t.Fatalf("expected unset optional key as warning, got %+v", c)
	}
	if auth.Calls() != 1 {
		t.Fatalf("expected one token request, got %d", auth.Calls())
	}
}

func TestConnectionCheckMissingEnvFailsAndSkipsAuth(t *testing.T) {
	cfg := completeConfig(t)
	cfg.ClientSecret = ""
	auth := &authStub{requestFn: tokenIssuer(3600)}

	report := services.NewConnectionCheckService(cfg, authFactory(auth)).Run(context.Background())

	if !report.Failed() {
		t.Fatal("expected report to fail")
	}
	if c := findCheck(t, report, services.CheckGroupEnvironment, "CLIENT_SECRET"); c.Status != domain.CheckFail {
		t.Fatalf("expected CLIENT_SECRET to fail, got %+v", c)
	}
	if c := findCheck(t, report, services.CheckGroupAuth, "token request"); c.Status != domain.CheckSkip {
		t.Fatalf("expected auth skipped, got %+v", c)
	}
	if auth.Calls() != 0 {
		t.Fatalf("expected no token request, got %d", auth.Calls())
	}
}

func TestConnectionCheckReportsEmptyCertificate(t *testing.T) {
	cfg := completeConfig(t)
	empty := filepath.Join(t.TempDir(), "empty.pem")
	testutil.WriteFile(t, empty, nil)
	cfg.TransportCertPath = empty

	report := services.NewConnectionCheckService(cfg, authFactory(&authStub{})).Run(context.Background())

	c := findCheck(t, report, services.CheckGroupFiles, "TRANSPORT_CERT_PATH")
	if c.Status != domain.CheckFail || !strings.Contains(c.Detail, "empty file") {
		t.Fatalf("expected empty file failure, got %+v", c)
	}
	if c := findCheck(t, report, services.CheckGroupCertificate, "transport identity"); c.Status != domain.CheckSkip {
		t.Fatalf("expected identity check skipped, got %+v", c)
	}
}

func TestConnectionCheckReportsMissingCertificate(t *testing.T) {
	cfg := completeConfig(t)
	cfg.TransportKeyPath = filepath.Join(t.TempDir(), "nope.key")

	report := services.NewConnectionCheckService(cfg, authFactory(&authStub{})).Run(context.Background())

	c := findCheck(t, report, services.CheckGroupFiles, "TRANSPORT_KEY_PATH")
	if c.Status != domain.CheckFail || !strings.Contains(c.Detail, "not found") {
		t.Fatalf("expected not found failure, got %+v", c)
	}
}

func TestConnectionCheckOptionalFileOnlyWarns(t *testing.T) {
	cfg := completeConfig(t)
	cfg.SigningKeyPath = filepath.Join(t.TempDir(), "missing-signing.key")

	report := services.NewConnectionCheckService(cfg, authFactory(&authStub{requestFn: tokenIssuer(60)})).Run(context.Background())

	if report.Failed() {
		t.Fatalf("expected optional file to warn only, got %+v", report.Checks)
	}
	if c := findCheck(t, report, services.CheckGroupFiles, "SIGNING_KEY_PATH"); c.Status != domain.CheckWarn {
		t.Fatalf("expected warning, got %+v", c)
	}
}

func TestConnectionCheckMismatchedPairFailsParse(t *testing.T) {
	cfg := completeConfig(t)
	_, otherKey := testutil.WriteKeyPair(t, t.TempDir())
	cfg.TransportKeyPath = otherKey

	report := services.NewConnectionCheckService(cfg, authFactory(&authStub{})).Run(context.Background())

	if c := findCheck(t, report, services.CheckGroupCertificate, "transport identity"); c.Status != domain.CheckFail {
		t.Fatalf("expected identity failure, got %+v", c)
	}
}

func TestConnectionCheckAuthFailureDescribed(t *testing.T) {
	auth := &authStub{requestFn: func(context.Context) (domain.Token, error) {
		return domain.Token{}, &commons.APIError{Method: "POST", Path: "/oauth/token", StatusCode: 401, Body: `{"error":"invalid_client"}`}
	}}

	report := services.NewConnectionCheckService(completeConfig(t), authFactory(auth)).Run(context.Background())

	c := findCheck(t, report, services.CheckGroupAuth, "token request")
	if c.Status != domain.CheckFail || !strings.Contains(c.Detail, "status 401") {
		t.Fatalf("expected described 401, got %+v", c)
	}
}

func TestConnectionCheckTransportFailureDescribed(t *testing.T) {
	auth := &authStub{requestFn: func(context.Context) (domain.Token, error) {
		return domain.Token{}, &commons.TransportError{Method: "POST", Path: "/oauth/token", Err: context.DeadlineExceeded}
	}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	report := services.NewConnectionCheckService(completeConfig(t), authFactory(auth)).Run(ctx)

	c := findCheck(t, report, services.CheckGroupAuth, "token request")
	if c.Status != domain.CheckFail || !strings.Contains(c.Detail, "timed out") {
		t.Fatalf("expected timeout description, got %+v", c)
	}
}

func TestConnectionCheckFactoryError(t *testing.T) {
	factory := func() (openfinance.AuthAPI, error) {
		return nil, &commons.SetupError{Op: "parse API base URL", Err: errors.New("bad url")}
	}

	report := services.NewConnectionCheckService(completeConfig(t), factory).Run(context.Background())

	c := findCheck(t, report, services.CheckGroupAuth, "token request")
	if c.Status != domain.CheckFail || !strings.HasPrefix(c.Detail, "setup error") {
		t.Fatalf("expected setup error, got %+v", c)
	}
}
