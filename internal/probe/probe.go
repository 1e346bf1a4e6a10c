// Package probe confirms which candidate port actually serves the daemon's
// HTTP API, using a cheap authenticated liveness call.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// requestTimeout bounds one liveness call, connection setup included.
	requestTimeout = 2 * time.Second

	// servicePath is the daemon's health endpoint (connect-RPC style POST).
	servicePath = "/langd.api.v1.HealthService/Check"

	// TokenHeader carries the session token on every daemon request.
	TokenHeader = "X-Langd-Token"

	protocolHeader  = "Connect-Protocol-Version"
	protocolVersion = "1"

	// livenessBody is a fixed, innocuous client identity the health service
	// answers without further authentication. Placeholder values are fine;
	// only the HTTP status matters.
	livenessBody = `{"client":{"name":"lsc","kind":"cli"}}`
)

// Prober sends liveness probes to candidate ports on loopback.
type Prober struct {
	client *http.Client
	host   string
	log    *logrus.Entry
}

func New() *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// The daemon serves a self-signed cert on loopback; there is
				// no chain to verify.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		host: "127.0.0.1",
		log:  logrus.WithField("component", "probe"),
	}
}

// Probe reports whether port answers the health endpoint with HTTP 200.
// Any other status, a refused connection, or a timeout is false. Safe to
// call repeatedly and from concurrent goroutines.
func (p *Prober) Probe(ctx context.Context, port int, token string) bool {
	url := fmt.Sprintf("https://%s:%d%s", p.host, port, servicePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(livenessBody))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(protocolHeader, protocolVersion)
	req.Header.Set(TokenHeader, token)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.WithError(err).WithField("port", port).Debug("probe failed")
		return false
	}
	// Drain so the transport can reuse or cleanly close the connection.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	p.log.WithFields(logrus.Fields{"port": port, "status": resp.StatusCode}).Debug("probe response")
	return resp.StatusCode == http.StatusOK
}
