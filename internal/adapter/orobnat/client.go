// Package orobnat talks to the OROBNAT water-quality registry: a cookie-bearing
// session per municipality, an advisory warm-up GET, and the search POST whose
// HTML response carries the report.
package orobnat

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/hydromet/orobnat-etl/internal/config"
	"github.com/hydromet/orobnat-etl/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0"

// TransportError reports a search request that did not complete with a 2xx
// status: either the connection failed (StatusCode 0, Err set) or the server
// answered with an error status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("registry request %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client holds the registry endpoints and the shared transport. It is cheap
// to keep for the whole process; cookie state lives in sessions.
type Client struct {
	cfg       *config.Config
	transport *http.Transport
	logger    *slog.Logger
}

// NewClient creates a registry client from configuration. TLS verification
// follows cfg.VerifyTLS; when disabled no transport-layer identity guarantee
// is made.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}, //nolint:gosec // configured per deployment
		},
		logger: logger,
	}
}

// Open starts a fresh session with its own cookie jar. Sessions are not
// shared across municipalities; each batch item gets its own.
func (c *Client) Open() (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Session{
		httpClient: &http.Client{Jar: jar, Transport: c.transport},
		cfg:        c.cfg,
		logger:     c.logger,
	}, nil
}

// Session is one cookie-scoped conversation with the registry.
type Session struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *slog.Logger
}

// Warmup performs the advisory menu GET. Some registry deployments hand out
// session cookies here, but the search works without them, so this is an
// advisory operation: any failure is logged at debug and otherwise ignored.
func (s *Session) Warmup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WarmupTimeout)
	defer cancel()

	params := url.Values{
		"methode":  {"menu"},
		"usd":      {s.cfg.OrobnatUsage},
		"idRegion": {s.cfg.OrobnatRegionID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.OrobnatMenuURL+"?"+params.Encode(), nil)
	if err != nil {
		s.logger.Debug("warmup request build failed", "error", err)
		return
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("warmup request failed", "error", err)
		return
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // response content is irrelevant
	resp.Body.Close()
}

// Submit POSTs the search form and returns the HTML body. Network failures
// and non-2xx statuses surface as *TransportError.
func (s *Session) Submit(ctx context.Context, payload domain.SearchPayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	searchURL := s.cfg.OrobnatSearchURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, strings.NewReader(payload.Values().Encode()))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{URL: searchURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return "", &TransportError{URL: searchURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: searchURL, Err: fmt.Errorf("read response: %w", err)}
	}
	return string(body), nil
}

func (s *Session) setHeaders(req *http.Request) {
	req.Header.Set("Origin", s.cfg.OrobnatBaseURL)
	req.Header.Set("Referer", s.cfg.OrobnatMenuURL)
	req.Header.Set("User-Agent", defaultUserAgent)
}
