package prisma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"pcsummary/internal/logger"
)

var (
	// ErrTransport covers network failures, timeouts and non-2xx responses.
	ErrTransport = errors.New("prisma api transport error")
	// ErrAuthentication is returned when login yields no token.
	ErrAuthentication = errors.New("prisma api login failed")
)

const authHeader = "x-redlock-auth"

// Config configures the API client.
type Config struct {
	URL            string
	AccessKey      string
	SecretKey      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client talks to the Prisma Cloud API. It is not safe for concurrent login.
type Client struct {
	url       string
	accessKey string
	secretKey string
	token     string
	client    *http.Client
}

// AlertQuery narrows the /alert request.
type AlertQuery struct {
	CloudAccountID string
	TimeRange      TimeRange
}

// NewClient creates an API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("prisma api URL is empty")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("prisma api access key and secret key are required")
	}
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = 30 * time.Second
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = 300 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.TLSHandshakeTimeout = connect

	return &Client{
		url:       strings.TrimRight(cfg.URL, "/"),
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: connect + read, Transport: transport},
	}, nil
}

// Login exchanges the access key pair for a session token and keeps it for
// subsequent requests.
func (c *Client) Login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.accessKey,
		"password": c.secretKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/login", body)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
		return "", fmt.Errorf("%w: %s", ErrAuthentication, statusErr.Status)
	}
	if err != nil {
		return "", err
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp, &login); err != nil || login.Token == "" {
		return "", fmt.Errorf("%w: %s", ErrAuthentication, truncate(resp, 200))
	}

	c.token = login.Token
	logger.Debugf("Login token: %s", logger.Mask(c.token))
	return c.token, nil
}

// FetchPolicies returns the raw /policy response of enabled policies.
func (c *Client) FetchPolicies(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/policy?policy.enabled=true", nil)
}

// FetchAlerts returns the raw /alert response for the query window.
func (c *Client) FetchAlerts(ctx context.Context, q AlertQuery) ([]byte, error) {
	body, err := json.Marshal(alertRequest(q))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/alert", body)
}

// StatusError reports a non-2xx API response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: status %s", ErrTransport, e.URL, e.Status)
}

// Unwrap lets errors.Is match ErrTransport.
func (e *StatusError) Unwrap() error {
	return ErrTransport
}

type alertTimeRange struct {
	Type  string `json:"type"`
	Value struct {
		Unit   string `json:"unit"`
		Amount int    `json:"amount"`
	} `json:"value"`
}

type alertFilter struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type alertBody struct {
	TimeRange alertTimeRange `json:"timeRange"`
	Filters   []alertFilter  `json:"filters,omitempty"`
}

func alertRequest(q AlertQuery) alertBody {
	var b alertBody
	b.TimeRange.Type = "relative"
	b.TimeRange.Value.Unit = q.TimeRange.Unit
	b.TimeRange.Value.Amount = q.TimeRange.Amount
	if q.CloudAccountID != "" {
		b.Filters = []alertFilter{{Name: "cloud.accountId", Operator: "=", Value: q.CloudAccountID}}
	}
	return b
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	url := c.url + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(authHeader, c.token)
	}

	logger.Debugf("%s %s", method, url)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status}
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
