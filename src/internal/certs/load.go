package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// Source names where the transport identity comes from: either a PEM
// certificate and key pair or a PKCS#12 bundle.
type Source struct {
	CertPath    string
	KeyPath     string
	P12Path     string
	P12Password string
	CAPath      string
}

func (s Source) HasIdentity() bool {
	return s.P12Path != "" || (s.CertPath != "" && s.KeyPath != "")
}

// LoadIdentity returns the client certificate presented during the mTLS
// handshake.
func LoadIdentity(src Source) (tls.Certificate, error) {
	if src.P12Path != "" {
		return loadP12(src.P12Path, src.P12Password)
	}
	if src.CertPath == "" || src.KeyPath == "" {
		return tls.Certificate{}, errors.New("certificate and key paths are both required")
	}

	cert, err := tls.LoadX509KeyPair(src.CertPath, src.KeyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load key pair %s/%s: %w", src.CertPath, src.KeyPath, err)
	}
	if cert.Leaf == nil && len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err == nil {
			cert.Leaf = leaf
		}
	}
	return cert, nil
}

// LoadCAPool returns the system pool extended with the PEM certificates in
// path. An empty path returns nil, meaning the system roots.
func LoadCAPool(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle %s: %w", path, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(raw) {
		return nil, fmt.Errorf("CA bundle %s contains no PEM certificates", path)
	}
	return pool, nil
}

// TLSConfig builds the client TLS configuration. Without an identity the
// config still verifies the server but presents no certificate.
func TLSConfig(src Source) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	pool, err := LoadCAPool(src.CAPath)
	if err != nil {
		return nil, err
	}
	cfg.RootCAs = pool

	if src.HasIdentity() {
		cert, err := LoadIdentity(src)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// Describe summarises a loaded certificate for console output.
func Describe(cert tls.Certificate, now time.Time) string {
	if cert.Leaf == nil {
		return "certificate loaded"
	}
	leaf := cert.Leaf
	state := "valid"
	switch {
	case now.Before(leaf.NotBefore):
		state = "not yet valid"
	case now.After(leaf.NotAfter):
		state = "expired"
	}
	return fmt.Sprintf("subject %q, %s until %s", leaf.Subject.CommonName, state, leaf.NotAfter.UTC().Format(time.RFC3339))
}

func loadP12(path, password string) (tls.Certificate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read PKCS#12 bundle %s: %w", path, err)
	}

	blocks, err := pkcs12.ToPEM(raw, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode PKCS#12 bundle %s: %w", path, err)
	}

	var certPEM, keyPEM []byte
	for _, b := range blocks {
		switch b.Type {
		case "CERTIFICATE":
			certPEM = append(certPEM, pem.EncodeToMemory(b)...)
		case "PRIVATE KEY":
			keyPEM = append(keyPEM, pem.EncodeToMemory(b)...)
		}
	}
	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return tls.Certificate{}, fmt.Errorf("PKCS#12 bundle %s has no certificate and key", path)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("parse PKCS#12 bundle %s: %w", path, err)
	}
	if len(cert.Certificate) > 0 {
		if leaf, err := x509.ParseCertificate(cert.Certificate[0]); err == nil {
			cert.Leaf = leaf
		}
	}
	return cert, nil
}
