// Package enoki relays transaction sponsorship calls to the Enoki API on
// behalf of zkLogin users. It holds no local state; each call is attempted
// exactly once because sponsorship signing is not idempotent.
package enoki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.enoki.mystenlabs.com"

	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "NOTARY_ENOKI_HTTP_TIMEOUT"

	apiKeyHeader     = "x-enoki-key"
	zkLoginJWTHeader = "zklogin-jwt"

	maxResponseBytes = 1 << 20 // 1 MiB
)

// Client talks to the Enoki sponsorship API.
type Client struct {
	baseURL string
	apiKey  string
	network string
	http    *http.Client
}

// UpstreamError reports a non-2xx Enoki response with its body text so the
// caller can embed the upstream message.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("enoki error %d: %s", e.Status, e.Body)
}

// SponsorResult is the decoded sponsor-init response plus the raw body for
// pass-through relaying.
type SponsorResult struct {
	Digest string `json:"digest"`
	Bytes  string `json:"bytes"`
	Raw    json.RawMessage
}

// CompleteResult is the decoded sponsor-complete response plus raw body.
type CompleteResult struct {
	Digest               string `json:"digest"`
	SponsoredTransaction string `json:"sponsoredTransaction"`
	Raw                  json.RawMessage
}

// New creates an Enoki client.
func New(baseURL, apiKey, network string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("enoki api key is required")
	}
	network = strings.TrimSpace(network)
	if network == "" {
		network = "testnet"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		network: network,
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}, nil
}

// Sponsor starts sponsorship: it forwards the serialized transaction and
// the zkLogin proof token, returning Enoki's signable payload.
func (c *Client) Sponsor(ctx context.Context, transactionBlockKindBytes, zkLoginJWT string) (*SponsorResult, error) {
	payload := map[string]string{
		"network":                   c.network,
		"transactionBlockKindBytes": transactionBlockKindBytes,
	}
	headers := map[string]string{zkLoginJWTHeader: zkLoginJWT}

	raw, err := c.post(ctx, "/transaction-blocks/sponsor", payload, headers)
	if err != nil {
		return nil, err
	}

	result := SponsorResult{Raw: raw}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode sponsor response: %w", err)
	}
	return &result, nil
}

// Complete finishes sponsorship: it forwards the user signature for a
// previously sponsored transaction digest.
func (c *Client) Complete(ctx context.Context, digest, userSignature string) (*CompleteResult, error) {
	payload := map[string]string{"userSignature": userSignature}

	raw, err := c.post(ctx, "/transaction-blocks/sponsor/"+digest, payload, nil)
	if err != nil {
		return nil, err
	}

	result := CompleteResult{Raw: raw}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode complete response: %w", err)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, headers map[string]string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enoki unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

func httpTimeoutFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if raw == "" {
		return defaultHTTPTimeout
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
		return parsed
	}
	return defaultHTTPTimeout
}
