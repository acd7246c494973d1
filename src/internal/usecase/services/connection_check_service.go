package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/certs"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/config"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
)

const (
	CheckGroupEnvironment = "environment"
	CheckGroupFiles       = "files"
	CheckGroupCertificate = "certificate"
	CheckGroupAuth        = "auth"
)

var _ service_interfaces.ConnectionCheckService = (*ConnectionCheckService)(nil)

// AuthFactory builds the client used for the token request. It is only
// called once every local prerequisite has passed.
type AuthFactory func() (openfinance.AuthAPI, error)

type ConnectionCheckService struct {
	cfg     config.Config
	newAuth AuthFactory
	now     func() time.Time
}

func NewConnectionCheckService(cfg config.Config, newAuth AuthFactory) *ConnectionCheckService {
	return &ConnectionCheckService{cfg: cfg, newAuth: newAuth, now: time.Now}
}

type fileCheck struct {
	key      string
	path     string
	required bool
}

// Run executes every check in order. It never returns early: a failure is
// recorded and later checks that depend on it are skipped.
func (s *ConnectionCheckService) Run(ctx context.Context) domain.CheckReport {
	var report domain.CheckReport

	s.checkEnvironment(&report)
	filesOK := s.checkFiles(&report)
	identityOK := s.checkIdentity(&report, filesOK)

	if report.Failed() || !identityOK {
		report.Skip(CheckGroupAuth, "token request", "skipped until the checks above pass")
	} else {
		s.checkAuth(ctx, &report)
	}

	logger.Info("connection check finished", logger.Fields{
		"passed":   report.Count(domain.CheckPass),
		"warnings": report.Count(domain.CheckWarn),
		"failed":   report.Count(domain.CheckFail),
	})
	return report
}

func (s *ConnectionCheckService) checkEnvironment(report *domain.CheckReport) {
	for _, key := range config.RequiredKeys {
		switch {
		case s.cfg.Value(key) != "":
			report.Pass(CheckGroupEnvironment, key, "set")
		case s.cfg.TransportP12Path != "" && (key == "TRANSPORT_CERT_PATH" || key == "TRANSPORT_KEY_PATH"):
			report.Pass(CheckGroupEnvironment, key, "covered by TRANSPORT_P12_PATH")
		default:
			report.Fail(CheckGroupEnvironment, key, "missing")
		}
	}

	for _, key := range config.OptionalKeys {
		if s.cfg.Value(key) != "" {
			report.Pass(CheckGroupEnvironment, key, "set")
			continue
		}
		report.Warn(CheckGroupEnvironment, key, "not set (optional)")
	}
}

// checkFiles reports on every configured certificate file and returns
// whether the transport identity files are all usable.
func (s *ConnectionCheckService) checkFiles(report *domain.CheckReport) bool {
	var files []fileCheck
	if s.cfg.TransportP12Path != "" {
		files = append(files, fileCheck{key: "TRANSPORT_P12_PATH", path: s.cfg.TransportP12Path, required: true})
	} else {
		files = append(files,
			fileCheck{key: "TRANSPORT_CERT_PATH", path: s.cfg.TransportCertPath, required: true},
			fileCheck{key: "TRANSPORT_KEY_PATH", path: s.cfg.TransportKeyPath, required: true},
		)
	}
	files = append(files,
		fileCheck{key: "CA_CERT_PATH", path: s.cfg.CACertPath},
		fileCheck{key: "SIGNING_CERT_PATH", path: s.cfg.SigningCertPath},
		fileCheck{key: "SIGNING_KEY_PATH", path: s.cfg.SigningKeyPath},
	)

	ok := true
	for _, f := range files {
		if f.path == "" {
			if f.required {
				ok = false
				report.Skip(CheckGroupFiles, f.key, "no path configured")
			}
			continue
		}

		state, err := certs.Inspect(f.path)
		if state == certs.FileOK {
			report.Pass(CheckGroupFiles, f.key, fmt.Sprintf("ok: %s", f.path))
			continue
		}

		detail := fmt.Sprintf("%s: %s", state, f.path)
		if err != nil {
			detail = fmt.Sprintf("%s (%v)", detail, err)
		}
		if f.required {
			ok = false
			report.Fail(CheckGroupFiles, f.key, detail)
		} else {
			report.Warn(CheckGroupFiles, f.key, detail)
		}
	}
	return ok
}

func (s *ConnectionCheckService) checkIdentity(report *domain.CheckReport, filesOK bool) bool {
	if !filesOK {
		report.Skip(CheckGroupCertificate, "transport identity", "skipped until the certificate files are readable")
		return false
	}

	cert, err := certs.LoadIdentity(s.source())
	if err != nil {
		report.Fail(CheckGroupCertificate, "transport identity", err.Error())
		return false
	}
	if expired(cert, s.now()) {
		report.Fail(CheckGroupCertificate, "transport identity", certs.Describe(cert, s.now()))
		return false
	}
	report.Pass(CheckGroupCertificate, "transport identity", certs.Describe(cert, s.now()))

	if s.cfg.CACertPath != "" {
		if state, _ := certs.Inspect(s.cfg.CACertPath); state == certs.FileOK {
			if _, err := certs.LoadCAPool(s.cfg.CACertPath); err != nil {
				report.Warn(CheckGroupCertificate, "CA bundle", err.Error())
			} else {
				report.Pass(CheckGroupCertificate, "CA bundle", "parsed")
			}
		}
	}
	return true
}

func (s *ConnectionCheckService) checkAuth(ctx context.Context, report *domain.CheckReport) {
	if s.newAuth == nil {
		report.Skip(CheckGroupAuth, "token request", "no client configured")
		return
	}

	auth, err := s.newAuth()
	if err != nil {
		report.Fail(CheckGroupAuth, "token request", commons.Describe(err))
		return
	}

	token, err := auth.RequestToken(ctx)
	if err != nil {
		logger.Error("connection check token request failed", err, nil)
		report.Fail(CheckGroupAuth, "token request", commons.Describe(err))
		return
	}

	report.Pass(CheckGroupAuth, "token request", fmt.Sprintf("%s token issued, expires in %ds", token.TokenType, token.ExpiresIn))
}

func (s *ConnectionCheckService) source() certs.Source {
	return certs.Source{
		CertPath:    s.cfg.TransportCertPath,
		KeyPath:     s.cfg.TransportKeyPath,
		P12Path:     s.cfg.TransportP12Path,
		P12Password: s.cfg.TransportP12Password,
		CAPath:      s.cfg.CACertPath,
	}
}

func expired(cert tls.Certificate, now time.Time) bool {
	return cert.Leaf != nil && now.After(cert.Leaf.NotAfter)
}
