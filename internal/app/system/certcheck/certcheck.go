// internal/app/system/certcheck/certcheck.go
package certcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"
)

// CertInfo describes the TLS certificate a host presents.
type CertInfo struct {
	Host      string    `json:"host"`
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
	Issuer    string    `json:"issuer"`
	IsValid   bool      `json:"is_valid"`
	Error     string    `json:"error,omitempty"`
}

// Skipped reports whether no handshake was attempted.
func (c CertInfo) Skipped() bool {
	return c.ExpiresAt.IsZero() && c.IsValid
}

// Check dials rawURL and reports its leaf certificate. Plain http URLs
// and localhost are not dialed and come back valid with a note in Error.
func Check(ctx context.Context, rawURL string) CertInfo {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return CertInfo{Host: rawURL, Error: "invalid url"}
	}
	host := u.Hostname()

	if u.Scheme != "https" {
		return CertInfo{Host: host, IsValid: true, Error: "plain http - no TLS"}
	}
	if isLocalhost(host) {
		return CertInfo{Host: host, IsValid: true, Error: "localhost - no TLS"}
	}

	port := u.Port()
	if port == "" {
		port = "443"
	}

	info := CertInfo{Host: host}
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 5 * time.Second},
		Config:    &tls.Config{ServerName: host},
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		info.Error = fmt.Sprintf("connection failed: %v", err)
		return info
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		info.Error = "no certificates found"
		return info
	}

	cert := certs[0]
	now := time.Now()
	info.ExpiresAt = cert.NotAfter
	info.DaysLeft = int(cert.NotAfter.Sub(now).Hours() / 24)
	info.Issuer = cert.Issuer.CommonName
	info.IsValid = now.Before(cert.NotAfter) && now.After(cert.NotBefore)
	return info
}

func isLocalhost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
