// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves response text over HTTP for extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/sciextract/pkg/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "sciextract/1.0"
	defaultMaxBodyBytes = 2 << 20
)

// Fetcher downloads response text, authenticating with an optional bearer
// token from the secrets directory.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBody    int64
	maxRetries int
	token      string
	log        *zap.Logger
}

// New builds a Fetcher from cfg. The bearer token comes from Token.
// A nil logger discards diagnostics.
func New(cfg types.FetchConfig, log *zap.Logger) (*Fetcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	token, err := Token(cfg.SecretsDir)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxBody:    maxBody,
		maxRetries: cfg.MaxRetries,
		token:      token,
		log:        log,
	}, nil
}

// Fetch GETs url and returns the body as text. Non-2xx responses and bodies
// larger than the configured cap are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.5")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := DoWithRetry(ctx, f.client, req, f.maxRetries, f.log)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBody {
		return "", fmt.Errorf("response from %s exceeds %d bytes", url, f.maxBody)
	}

	f.log.Debug("fetched response", zap.String("url", url), zap.Int("bytes", len(data)))
	return string(data), nil
}
