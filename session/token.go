package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cinematest/browser"
)

var (
	// ErrLoginRejected means the API refused the credentials.
	ErrLoginRejected = errors.New("API login rejected")
	// ErrMissingToken means the API accepted the login but sent no access token.
	ErrMissingToken = errors.New("API login response without access token")
)

// Token is the persisted API access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	Timestamp   time.Time `json:"timestamp"`
}

// TokenOptions configures a TokenCache.
type TokenOptions struct {
	// APIBaseURL is the root of the JSON API.
	APIBaseURL string
	// LoginPath is POSTed with {"username", "password"}.
	// Default: /login
	LoginPath   string
	TokenPath   string
	Credentials Credentials
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// TokenCache obtains a bearer token from the API once and creates request
// contexts that carry it.
type TokenCache struct {
	pw      *playwright.Playwright
	options TokenOptions
	logger  *slog.Logger
}

// NewTokenCache creates a token cache using the request API of pw.
func NewTokenCache(pw *playwright.Playwright, options TokenOptions) *TokenCache {
	if options.LoginPath == "" {
		options.LoginPath = "/login"
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &TokenCache{
		pw:      pw,
		options: options,
		logger:  options.Logger.With(slog.String("component", "token")),
	}
}

// Authenticate logs in against the API and persists the returned token.
func (c *TokenCache) Authenticate() (Token, error) {
	c.logger.Info("Authenticating against API", slog.String("username", c.options.Credentials.Username))

	req, err := c.PublicRequest()
	if err != nil {
		return Token{}, err
	}
	defer browser.Release(c.logger, "API request context", func() error { return req.Dispose() })

	resp, err := req.Post(c.options.LoginPath, playwright.APIRequestContextPostOptions{
		Data: map[string]string{
			"username": c.options.Credentials.Username,
			"password": c.options.Credentials.Password,
		},
	})
	if err != nil {
		return Token{}, fmt.Errorf("posting API login: %w", err)
	}

	if resp.Status() != 200 {
		body, _ := resp.Text()
		return Token{}, fmt.Errorf("%w (status %d): %s", ErrLoginRejected, resp.Status(), body)
	}

	var loginBody struct {
		AccessToken string `json:"accessToken"`
	}
	if err := resp.JSON(&loginBody); err != nil {
		return Token{}, fmt.Errorf("decoding API login response: %w", err)
	}
	if loginBody.AccessToken == "" {
		return Token{}, ErrMissingToken
	}

	token := Token{
		AccessToken: loginBody.AccessToken,
		Timestamp:   time.Now().UTC(),
	}
	if err := WriteToken(c.options.TokenPath, token); err != nil {
		return Token{}, err
	}

	c.logger.Info("Saved API token", slog.String("path", c.options.TokenPath))

	return token, nil
}

// AuthRequest returns a request context that sends the persisted token as
// bearer authorization. The caller must dispose it.
func (c *TokenCache) AuthRequest() (playwright.APIRequestContext, error) {
	token, err := ReadToken(c.options.TokenPath)
	if err != nil {
		return nil, err
	}
	req, err := c.pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(c.options.APIBaseURL),
		ExtraHttpHeaders: map[string]string{
			"Authorization": "Bearer " + token.AccessToken,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating authenticated request context: %w", err)
	}
	return req, nil
}

// PublicRequest returns a request context without credentials. The caller
// must dispose it.
func (c *TokenCache) PublicRequest() (playwright.APIRequestContext, error) {
	req, err := c.pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(c.options.APIBaseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("creating request context: %w", err)
	}
	return req, nil
}

// WriteToken persists token at path, replacing previous content.
func WriteToken(path string, token Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// ReadToken loads a token written by WriteToken.
func ReadToken(path string) (Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, fmt.Errorf("%w at %s", ErrNoState, path)
	}
	if err != nil {
		return Token{}, fmt.Errorf("reading token file: %w", err)
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, fmt.Errorf("decoding token file %s: %w", path, err)
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("%w in %s", ErrMissingToken, path)
	}
	return token, nil
}
