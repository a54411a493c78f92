package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenProvider supplies bearer tokens for an API.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials is an OAuth2 client-credentials TokenProvider that
// caches the token until Skew before its expiry.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Client       *http.Client
	Skew         time.Duration

	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewClientCredentials returns a provider with a 60s refresh skew.
func NewClientCredentials(tokenURL, clientID, clientSecret string, client *http.Client) *ClientCredentials {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ClientCredentials{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       client,
		Skew:         60 * time.Second,
		now:          time.Now,
	}
}

// Token returns the cached token or exchanges the credentials for a new one.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.expiry.Add(-c.Skew)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}

	c.token = result.AccessToken
	c.expiry = now.Add(time.Duration(result.ExpiresIn) * time.Second)
	return c.token, nil
}

// Invalidate drops the cached token so the next call refreshes it.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}
