package apiman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

const (
	DefaultTimeout              = 30 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryInitialInterval = 500 * time.Millisecond
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes how to reach the management API.
type Config struct {
	// Address is the API root, e.g. http://localhost:8080/apiman.
	Address  string
	Username string
	Password string
	Version  remote.ServerVersion
	// Timeout applies to the default HTTP client only.
	Timeout time.Duration
	// MaxRetries bounds retries of idempotent requests. Zero disables them.
	MaxRetries           uint
	RetryInitialInterval time.Duration
	// HTTPClient overrides the default client.
	HTTPClient HTTPClient
}

// Client talks to one management server. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient HTTPClient
	baseURL    string
	layout     layout
	cache      *Cache
}

// NewClient creates a client. Zero config values fall back to defaults.
func NewClient(cfg Config) *Client {
	if cfg.Version == "" {
		cfg.Version = remote.DefaultServerVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = DefaultRetryInitialInterval
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.Address, "/"),
		layout:     layoutFor(cfg.Version),
		cache:      NewCache(),
	}
}

// Version returns the server dialect in use.
func (c *Client) Version() remote.ServerVersion {
	return c.cfg.Version
}

// Capabilities returns one capability per entity type.
func (c *Client) Capabilities() remote.Capabilities {
	return remote.Capabilities{
		remote.TypeGateway:     &gateways{c},
		remote.TypePlugin:      &plugins{c},
		remote.TypeOrg:         &orgs{c},
		remote.TypeApi:         &apis{c},
		remote.TypeApiVersion:  &versions{c},
		remote.TypePolicy:      &policies{c},
		remote.TypePublication: &publications{c},
	}
}

// fetchAndDeserialize is a generic helper to GET and decode a JSON resource.
func fetchAndDeserialize[T any](ctx context.Context, c *Client, path string) (T, error) {
	var result T
	err := c.do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// exists probes path: 2xx means present, 404 absent.
func (c *Client) exists(ctx context.Context, path string) (bool, error) {
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		return true, nil
	}
	if remote.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// do sends one request, retrying idempotent methods.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
	}

	if !idempotent(method) || c.cfg.MaxRetries == 0 {
		return c.roundTrip(ctx, method, path, payload, out)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInitialInterval

	operation := func() (struct{}, error) {
		err := c.roundTrip(ctx, method, path, payload, out)
		if err != nil && !retryable(ctx, err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}
	notify := func(err error, next time.Duration) {
		log.Debugf("Retrying %s %s in %v: %v", method, path, next, err)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
		backoff.WithNotify(notify),
	)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out any) error {
	op := method + " " + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &remote.RemoteError{Op: op, Message: "invalid request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	log.Debugf("%s", op)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &remote.RemoteError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &remote.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &remote.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &remote.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "failed to unmarshal response", Cause: err}
		}
	}
	return nil
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodPut
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var re *remote.RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.StatusCode == 0 || re.StatusCode >= 500
}

// errorMessage extracts the message of an apiman error bean, falling back
// to the raw body.
func errorMessage(data []byte) string {
	var bean errorBean
	if err := json.Unmarshal(data, &bean); err == nil && bean.Message != "" {
		return bean.Message
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
