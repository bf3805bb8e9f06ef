package steamapi

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/juliarose/steam-api/pkg/cookiejar"
	"github.com/juliarose/steam-api/pkg/logger"
	"github.com/juliarose/steam-api/pkg/transport"
)

// Hostname is the API host every request targets by default.
const Hostname = "api.steampowered.com"

// DefaultBaseURL is the scheme and host requests are built on.
const DefaultBaseURL = "https://" + Hostname

// Client talks to the Web API and owns the session cookie store.
// Safe for concurrent use. Zero value is not usable; use New.
type Client struct {
	baseURL   string
	cookies   *cookiejar.Store
	transport *transport.Client
	logger    *slog.Logger
	metrics   MetricsRecorder
}

// New creates a client with an empty session. It only fails when
// WithBaseURL was given an unusable URL.
func New(opts ...Option) (*Client, error) {
	o := &options{
		baseURL: DefaultBaseURL,
		logger:  logger.Discard(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}

	store, err := cookiejar.New(o.baseURL)
	if err != nil {
		return nil, parameterError("invalid base URL", err)
	}

	tOpts := []transport.Option{
		transport.WithJar(store),
		transport.WithLogger(o.logger),
		transport.WithOnAttempt(o.metrics.ObserveAttempt),
	}
	if o.httpClient != nil {
		tOpts = append(tOpts, transport.WithHTTPClient(o.httpClient))
	}
	tOpts = append(tOpts, o.transportOpts...)

	base := store.URL()
	return &Client{
		baseURL:   strings.TrimSuffix(base.String(), "/"),
		cookies:   store,
		transport: transport.New(tOpts...),
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

// APIURL builds https://<host>/<interface>/<method>/v<version>.
func (c *Client) APIURL(iface, method string, version int) string {
	return fmt.Sprintf("%s/%s/%s/v%d", c.baseURL, iface, method, version)
}

// SetCookies ingests raw cookie strings, e.g. the set returned by
// AuthenticateUser or cookies obtained by an earlier login flow.
func (c *Client) SetCookies(cookies []string) {
	c.cookies.Apply(cookies)
}

// SessionID returns the current session identifier, if any.
func (c *Client) SessionID() (string, bool) {
	return c.cookies.SessionID()
}

// RequireSession returns the session identifier or a NotLoggedIn error.
func (c *Client) RequireSession() (string, error) {
	id, ok := c.cookies.SessionID()
	if !ok {
		return "", notLoggedInError()
	}
	return id, nil
}

// CookieStore exposes the session store shared with the transport.
func (c *Client) CookieStore() *cookiejar.Store {
	return c.cookies
}
