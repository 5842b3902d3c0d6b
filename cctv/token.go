// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cctv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	// defaultTokenLifetime is assumed when the issuer does not state
	// one. Matches the issuer's observed 2 hour validity.
	defaultTokenLifetime = 2 * time.Hour

	// expiryMargin is subtracted from the stated lifetime so a token
	// is refreshed before wall-clock skew can make it lapse mid-request.
	expiryMargin = 5 * time.Minute
)

// Credentials are the fixed client credentials for the token endpoint.
type Credentials struct {
	AuthorizeCode string
	UserAuth      string
	ClientID      string
}

type tokenRequest struct {
	AuthorizeCode string   `json:"authorize_code"`
	UserAuth      string   `json:"user_auth"`
	ClientID      string   `json:"client_id"`
	Scope         []string `json:"scope"`
}

type tokenResponse struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
	Data    struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
		Status      bool   `json:"status"`
	} `json:"Data"`
}

// TokenSource caches one bearer token and its expiry behind a mutex.
// The zero value is not usable; construct with NewTokenSource.
type TokenSource struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	baseURL    string
	creds      Credentials
	httpClient *http.Client
	lifetime   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// TokenOption configures a TokenSource.
type TokenOption func(*TokenSource)

// WithTokenLifetime overrides the assumed token validity span.
func WithTokenLifetime(lifetime time.Duration) TokenOption {
	return func(ts *TokenSource) {
		ts.lifetime = lifetime
	}
}

// WithTokenHTTPClient overrides the HTTP client used for refreshes.
func WithTokenHTTPClient(client *http.Client) TokenOption {
	return func(ts *TokenSource) {
		ts.httpClient = client
	}
}

// WithTokenLogger sets a custom logger.
func WithTokenLogger(logger *slog.Logger) TokenOption {
	return func(ts *TokenSource) {
		if logger == nil {
			logger = slog.Default()
		}
		ts.logger = logger
	}
}

// withTokenClock overrides the clock. Test use only.
func withTokenClock(now func() time.Time) TokenOption {
	return func(ts *TokenSource) {
		ts.now = now
	}
}

// NewTokenSource creates a token source for the given issuer base URL.
func NewTokenSource(baseURL string, creds Credentials, opts ...TokenOption) *TokenSource {
	ts := &TokenSource{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: defaultHTTPClient(),
		lifetime:   defaultTokenLifetime,
		now:        time.Now,
		logger:     slog.Default().With("component", "cctv-token"),
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Token returns a valid bearer token, refreshing it first if the
// cached one is absent or has lapsed. Concurrent callers serialize
// here; the first one pays for the refresh, the rest reuse it. On
// refresh failure the cache is left unchanged so the next call retries
// immediately.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiresAt) {
		return ts.token, nil
	}

	token, err := ts.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = ts.now().Add(ts.lifetime - expiryMargin)
	ts.logger.Info("bearer token refreshed", "expires_at", ts.expiresAt)

	return token, nil
}

// AuthHeader returns the Authorization header value for a request.
func (ts *TokenSource) AuthHeader(ctx context.Context) (string, error) {
	token, err := ts.Token(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

func (ts *TokenSource) fetchToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(tokenRequest{
		AuthorizeCode: ts.creds.AuthorizeCode,
		UserAuth:      ts.creds.UserAuth,
		ClientID:      ts.creds.ClientID,
		Scope:         []string{"client"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.baseURL+"/get-token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		ts.logger.Error("token endpoint unreachable", "err", err)
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ts.logger.Error("token endpoint returned error status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: token endpoint status %d", ErrAPIFailure, resp.StatusCode)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %w", ErrAPIFailure, err)
	}

	if decoded.Data.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", ErrTokenRejected, decoded.Message)
	}

	return decoded.Data.AccessToken, nil
}
