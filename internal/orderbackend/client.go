// Package orderbackend implements the token-refresh-guarded HTTP client
// against the order-management backend (C1): phone/order search, return
// write-back, and the status/carrier/platform mapping tables from §4.1/§6.
package orderbackend

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nayacomm/voicebridge/internal/obs"
	"github.com/nayacomm/voicebridge/internal/tokencache"
)

const (
	requestTimeout       = 10 * time.Second
	tokenSafetyMargin    = 1 * time.Hour
	tokenNominalLifetime = 24 * time.Hour
)

// Client is process-wide: one instance is shared across every concurrent
// call. Its token is guarded by a mutex so only one refresh is ever
// in-flight; other callers block on the refresh and reuse the result.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	refreshToken string

	cache *tokencache.Cache // optional, may be nil

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	log *obs.Logger
}

// Config collects the settings needed to construct a Client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RefreshToken string
	Cache        *tokencache.Cache
}

// New builds an order backend client with a dedicated HTTP transport tuned
// for a long-lived, connection-reusing process-wide client rather than a
// blanket client-level timeout (callers supply per-request deadlines).
func New(cfg Config, logger *obs.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: requestTimeout,
	}
	return &Client{
		httpClient:   &http.Client{Transport: transport},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		cache:        cfg.Cache,
		log:          logger,
	}
}

// token returns a valid bearer token, refreshing if absent or within
// tokenSafetyMargin of the nominal 24h expiry. Only one refresh is
// in-flight at a time across all callers.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.cache != nil {
		if tok, expiresAt, ok := c.cache.Get(ctx, c.clientID); ok && time.Now().Before(expiresAt) {
			c.accessToken, c.expiresAt = tok, expiresAt
			return tok, nil
		}
	}

	tok, expiresAt, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}
	c.accessToken, c.expiresAt = tok, expiresAt
	if c.cache != nil {
		c.cache.Set(ctx, c.clientID, tok, expiresAt)
	}
	return tok, nil
}

func (c *Client) refresh(ctx context.Context) (string, time.Time, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	var resp tokenResponse
	if err := c.postForm(reqCtx, "/oauth/token", form, &resp); err != nil {
		return "", time.Time{}, &Error{Kind: KindAuthExpired, Op: "refresh", Err: err}
	}
	expiresAt := time.Now().Add(tokenNominalLifetime - tokenSafetyMargin)
	return resp.AccessToken, expiresAt, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}
