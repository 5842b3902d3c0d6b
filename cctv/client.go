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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/poiesic/camvec/core"
)

const (
	requestTimeout = 30 * time.Second
	connectTimeout = 10 * time.Second
)

// defaultHTTPClient builds the client shared by the token source and
// the metadata client: bounded connect and overall request timeouts so
// a stuck service cannot hold a pipeline run forever.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}
}

type metadataRequest struct {
	CctvID    string `json:"cctv_id"`
	DateStart string `json:"date_start"`
	DateStop  string `json:"date_stop"`
	Limit     int    `json:"limit"`
}

type metadataResponse struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	Data    []core.ImageDescriptor `json:"data"`
}

type cameraListResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		CctvID string `json:"cctv_id"`
	} `json:"data"`
}

// Client talks to the CCTV metadata service. All requests carry a
// bearer token obtained from the TokenSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenSource
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewClient creates a metadata client for the given base URL.
func NewClient(baseURL string, tokens *TokenSource, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token source required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: defaultHTTPClient(),
		tokens:     tokens,
		logger:     slog.Default().With("component", "cctv-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchTrainData requests up to limit image descriptors for one camera
// inside the given window. The list comes back unfiltered; duplicates
// across runs are reconciled by the idempotent upsert, not here.
func (c *Client) FetchTrainData(ctx context.Context, cameraID string, window core.Window, limit int) ([]core.ImageDescriptor, error) {
	auth, err := c.tokens.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(metadataRequest{
		CctvID:    cameraID,
		DateStart: window.StartString(),
		DateStop:  window.StopString(),
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetching train data",
		"camera_id", cameraID,
		"date_start", window.StartString(),
		"date_stop", window.StopString(),
		"limit", limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/video-metadata/train-data-condition", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIFailure, resp.StatusCode, detail)
	}

	var decoded metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata response: %w", ErrAPIFailure, err)
	}

	if !decoded.Success {
		return nil, fmt.Errorf("%w: success=false", ErrAPIFailure)
	}

	c.logger.Info("fetched train data", "camera_id", cameraID, "count", len(decoded.Data))
	return decoded.Data, nil
}

// ListCameras returns the ids of all cameras known to the service.
func (c *Client) ListCameras(ctx context.Context) ([]string, error) {
	auth, err := c.tokens.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/video-metadata/list-cctv", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrAPIFailure, resp.StatusCode)
	}

	var decoded cameraListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding camera list: %w", ErrAPIFailure, err)
	}

	ids := make([]string, len(decoded.Data))
	for i, item := range decoded.Data {
		ids[i] = item.CctvID
	}
	return ids, nil
}

// connectError wraps a transport-level failure, distinguishing
// timeouts from other connection problems in the message. Operators
// read this; callers branch only on ErrServiceUnavailable.
func connectError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: connection timed out: %w", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: connection failed: %w", ErrServiceUnavailable, err)
}
