// Package session handles authentication against the management
// server and hands out websocket connections bound to the
// authenticated session. Monitoring queries never authenticate
// themselves; they dial through an already logged-in Session.
package session

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"

	// DefaultHandshakeTimeout bounds the websocket upgrade.
	DefaultHandshakeTimeout = 10 * time.Second
)

// ErrNotLoggedIn is returned when a socket is dialed before Login.
var ErrNotLoggedIn = errors.New("no session: login first")

// Config holds session parameters.
type Config struct {
	// URL is the server base URL, e.g. https://smc.example.net:8082
	URL string
	// APIKey authenticates the login call
	APIKey string
	// Insecure skips TLS certificate verification
	Insecure bool
	// HandshakeTimeout bounds websocket upgrades; zero uses the default
	HandshakeTimeout time.Duration
	// Logger for session events; nil uses slog.Default
	Logger *slog.Logger
}

// Session is an authenticated connection context to the management
// server. It is safe for concurrent use once Login has returned.
type Session struct {
	baseURL   *url.URL
	apiKey    string
	client    *http.Client
	jar       http.CookieJar
	tlsConfig *tls.Config
	timeout   time.Duration
	log       *slog.Logger

	loggedIn bool
}

// New builds a Session from config. No network traffic happens until
// Login is called.
func New(cfg Config) (*Session, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server URL scheme %q", base.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var tlsConfig *tls.Config
	if cfg.Insecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Jar:       jar,
			Timeout:   30 * time.Second,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
		jar:       jar,
		tlsConfig: tlsConfig,
		timeout:   timeout,
		log:       log,
	}, nil
}

// Login authenticates with the server API key and captures the
// session cookie used by subsequent websocket handshakes.
func (s *Session) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"api_key": s.apiKey})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint(loginPath), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("login rejected: %s: %s", resp.Status, bytes.TrimSpace(detail))
	}

	s.loggedIn = true
	s.log.Debug("session established", "server", s.baseURL.Host)
	return nil
}

// Logout invalidates the server-side session. Open sockets are not
// affected; close them separately.
func (s *Session) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		s.endpoint(logoutPath), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	resp.Body.Close()
	s.loggedIn = false
	return nil
}

// DialSocket opens a websocket to the given monitoring location using
// the session cookie. Implements transport.Dialer.
func (s *Session) DialSocket(ctx context.Context, location string) (*websocket.Conn, error) {
	if !s.loggedIn {
		return nil, ErrNotLoggedIn
	}

	dialer := websocket.Dialer{
		Jar:              s.jar,
		TLSClientConfig:  s.tlsConfig,
		HandshakeTimeout: s.timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, s.WebSocketURL(location), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket handshake failed: %w", err)
	}
	return conn, nil
}

// WebSocketURL returns the ws/wss URL for a monitoring location path.
func (s *Session) WebSocketURL(location string) string {
	u := *s.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = location
	return u.String()
}

func (s *Session) endpoint(path string) string {
	u := *s.baseURL
	u.Path = path
	return u.String()
}
