// Package backend talks to the hosted backend-as-a-service: auth, REST
// tables and server-side functions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration

	// Transport replaces the default round tripper. Tests plug the mock
	// interceptor in here.
	Transport http.RoundTripper
}

type Client struct {
	log  *logger.Logger
	cfg  Config
	base string
	http *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("missing backend URL")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		log:  log.With("client", "BackendClient"),
		cfg:  cfg,
		base: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}, nil
}

// Provider memoizes a Client built on first use.
type Provider struct {
	once   sync.Once
	build  func() (*Client, error)
	client *Client
	err    error
}

func NewProvider(log *logger.Logger, cfg Config) *Provider {
	return &Provider{build: func() (*Client, error) { return New(log, cfg) }}
}

// Client returns the shared client. Every call returns the same instance,
// or the same construction error.
func (p *Provider) Client() (*Client, error) {
	p.once.Do(func() {
		p.client, p.err = p.build()
	})
	return p.client, p.err
}

// -------------------- auth --------------------

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		credentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return out.Session(), nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, data map[string]any) (*domain.Session, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "",
		credentialsRequest{Email: email, Password: password, Data: data}, &out)
	if err != nil {
		return nil, err
	}
	return out.Session(), nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	u := out.Domain()
	return &u, nil
}

func (c *Client) Recover(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/recover", "", map[string]string{"email": email}, nil)
}

// -------------------- rest --------------------

// Select reads rows of table into out, a pointer to a slice. Filters use
// the PostgREST syntax, e.g. user_id=eq.<id>.
func (c *Client) Select(ctx context.Context, accessToken string, table Table, filters url.Values, out any) error {
	path := "/rest/v1/" + string(table)
	if len(filters) > 0 {
		path += "?" + filters.Encode()
	}
	return c.do(ctx, http.MethodGet, path, accessToken, nil, out)
}

// Insert writes rows and decodes the stored representation into out when
// it is not nil.
func (c *Client) Insert(ctx context.Context, accessToken string, table Table, rows any, out any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+string(table), accessToken, rows, out)
}

func (c *Client) Update(ctx context.Context, accessToken string, table Table, filters url.Values, patch any) error {
	path := "/rest/v1/" + string(table)
	if len(filters) > 0 {
		path += "?" + filters.Encode()
	}
	return c.do(ctx, http.MethodPatch, path, accessToken, patch, nil)
}

// -------------------- functions --------------------

func (c *Client) Invoke(ctx context.Context, accessToken string, fn Function, body, out any) error {
	if body == nil {
		body = struct{}{}
	}
	return c.do(ctx, http.MethodPost, "/functions/v1/"+string(fn), accessToken, body, out)
}

func (c *Client) CheckSubscription(ctx context.Context, accessToken string) (*domain.Subscription, error) {
	var out domain.Subscription
	if err := c.Invoke(ctx, accessToken, FuncCheckSubscription, nil, &out); err != nil {
		return nil, err
	}
	if out.Tier == "" {
		out.Tier = domain.TierFree
	}
	return &out, nil
}

func (c *Client) CheckAddons(ctx context.Context, accessToken string) (*domain.Addons, error) {
	var out domain.Addons
	if err := c.Invoke(ctx, accessToken, FuncCheckAddons, nil, &out); err != nil {
		return nil, err
	}
	if out.Addons == nil {
		out.Addons = []string{}
	}
	return &out, nil
}

func (c *Client) CreateCheckout(ctx context.Context, accessToken, priceID string) (*domain.RedirectURL, error) {
	var out domain.RedirectURL
	if err := c.Invoke(ctx, accessToken, FuncCreateCheckout, CheckoutRequest{PriceID: priceID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CustomerPortal(ctx context.Context, accessToken string) (*domain.RedirectURL, error) {
	var out domain.RedirectURL
	if err := c.Invoke(ctx, accessToken, FuncCustomerPortal, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -------------------- helpers --------------------

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("backend: encode %s: %w", path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := accessToken
	if bearer == "" {
		bearer = c.cfg.AnonKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if method == http.MethodPost && strings.HasPrefix(path, "/rest/") {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, raw)
		if resp.StatusCode >= 500 {
			c.log.Warn("backend call failed", "method", method, "path", req.URL.Path, "status", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
