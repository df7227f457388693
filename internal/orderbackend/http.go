package orderbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// errUnauthorized marks a real HTTP 401 so authedPostForm can route it to
// KindAuthExpired regardless of how postForm happened to wrap it.
var errUnauthorized = errors.New("unauthorized")

// backendEnvelope is the wire shape every non-token endpoint responds with,
// per §6: {result, message?, count?, data?}.
type backendEnvelope struct {
	Result  string          `json:"result"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error: %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// authedPostForm performs an authenticated POST, retrying exactly once
// after a forced token refresh on a 401, per §4.1's auth failure policy.
func (c *Client) authedPostForm(ctx context.Context, path string, form url.Values, out *backendEnvelope) error {
	do := func() error {
		tok, err := c.token(ctx)
		if err != nil {
			return &Error{Kind: KindAuthExpired, Op: path, Err: err}
		}
		form.Set("access_token", tok)
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		if err := c.postForm(reqCtx, path, form, out); err != nil {
			if errors.Is(err, errUnauthorized) {
				return &Error{Kind: KindAuthExpired, Op: path, Err: err}
			}
			return &Error{Kind: KindTransient, Op: path, Err: err}
		}
		if out.Result == "error" && strings.Contains(strings.ToLower(out.Message), "auth") {
			return &Error{Kind: KindAuthExpired, Op: path, Err: fmt.Errorf("%s", out.Message)}
		}
		return nil
	}

	err := do()
	if err == nil {
		return nil
	}
	var be *Error
	if e, ok := err.(*Error); ok && e.Kind == KindAuthExpired {
		be = e
	}
	if be == nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
	return do()
}
