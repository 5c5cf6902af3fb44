// Package httpclient builds HTTP clients suitable for corporate network
// environments: custom root CAs are appended to the system pool and proxy
// settings are taken from the standard environment variables.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Options configures the HTTP client factory.
type Options struct {
	CertPath string        // Path to an additional root CA bundle (PEM)
	Timeout  time.Duration // Overall request timeout
}

// DefaultTimeout is applied when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New creates an HTTP client honoring corporate TLS and proxy settings.
// When a certificate path is given, the certificates are appended to the
// system root pool so both public and internal endpoints keep verifying.
func New(optFns ...func(o *Options)) (*http.Client, error) {
	opts := Options{Timeout: DefaultTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	if opts.CertPath != "" {
		pool, err := rootPoolWith(opts.CertPath)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// rootPoolWith returns the system cert pool extended with the PEM bundle at path.
func rootPoolWith(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate %s: %w", path, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates parsed from %s", path)
	}
	return pool, nil
}
