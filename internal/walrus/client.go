// Package walrus talks to the Walrus decentralized blob store over its
// publisher and aggregator HTTP APIs.
package walrus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"notary/internal/storage"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	httpTimeoutEnvKey  = "NOTARY_WALRUS_HTTP_TIMEOUT"

	maxErrorBodyBytes = 4 << 10 // 4 KiB
)

// Options configures a Walrus client.
type Options struct {
	PublisherURL    string
	AggregatorURL   string
	HashLookupURL   string
	ExplorerBaseURL string
	Epochs          int
	Deletable       bool
}

// Client is an HTTP client for the Walrus publisher and aggregator.
type Client struct {
	opts Options
	http *http.Client
}

// New creates a Walrus client. Every outbound call carries the client
// timeout; there is exactly one attempt per call, no retries.
func New(opts Options) (*Client, error) {
	opts.PublisherURL = strings.TrimRight(strings.TrimSpace(opts.PublisherURL), "/")
	opts.AggregatorURL = strings.TrimRight(strings.TrimSpace(opts.AggregatorURL), "/")
	opts.ExplorerBaseURL = strings.TrimRight(strings.TrimSpace(opts.ExplorerBaseURL), "/")
	opts.HashLookupURL = strings.TrimSpace(opts.HashLookupURL)
	if opts.PublisherURL == "" {
		return nil, fmt.Errorf("walrus publisher url is required")
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: httpTimeoutFromEnv()},
	}, nil
}

// Name identifies the backend.
func (c *Client) Name() string { return "walrus" }

// Put stores bytes via the publisher and returns the blob id plus an
// explorer URL for it.
func (c *Client) Put(ctx context.Context, r io.Reader, meta storage.PutMeta) (storage.PutResult, error) {
	var zero storage.PutResult
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}

	url := fmt.Sprintf("%s/v1/blobs?epochs=%d", c.opts.PublisherURL, c.opts.Epochs)
	if c.opts.Deletable {
		url += "&deletable=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return zero, err
	}
	mediaType := strings.TrimSpace(meta.MediaType)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("walrus publisher unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, upstreamError("walrus publisher", resp)
	}

	var decoded storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return zero, fmt.Errorf("decode publisher response: %w", err)
	}
	result, err := decoded.result()
	if err != nil {
		return zero, err
	}

	return storage.PutResult{
		BlobID:    result.BlobID,
		URL:       c.ExplorerURL(result.BlobID),
		SizeBytes: result.SizeBytes,
	}, nil
}

// Open streams blob content from the aggregator.
func (c *Client) Open(ctx context.Context, blobID string) (io.ReadCloser, error) {
	blobID = strings.TrimSpace(blobID)
	if blobID == "" {
		return nil, fmt.Errorf("blob id is required")
	}
	if c.opts.AggregatorURL == "" {
		return nil, fmt.Errorf("walrus aggregator url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.AggregatorURL+"/v1/blobs/"+blobID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("walrus aggregator unreachable: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, upstreamError("walrus aggregator", resp)
	}
	return resp.Body, nil
}

// LookupByHash asks the configured hash-lookup endpoint which blob holds
// content with the given digest. The endpoint URL may embed a {hash}
// placeholder; otherwise the hash is appended as a path segment.
func (c *Client) LookupByHash(ctx context.Context, hash string) (string, error) {
	if c.opts.HashLookupURL == "" {
		return "", fmt.Errorf("hash lookup url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lookupURL(hash), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("walrus aggregator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", upstreamError("walrus aggregator", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return decodeLookupBlobID(body)
}

// ExplorerURL builds the deterministic walruscan URL for a blob id.
func (c *Client) ExplorerURL(blobID string) string {
	if c.opts.ExplorerBaseURL == "" || blobID == "" {
		return ""
	}
	return c.opts.ExplorerBaseURL + "/" + blobID
}

func (c *Client) lookupURL(hash string) string {
	base := c.opts.HashLookupURL
	if strings.Contains(base, "{hash}") {
		return strings.ReplaceAll(base, "{hash}", hash)
	}
	return strings.TrimRight(base, "/") + "/" + hash
}

func upstreamError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, message)
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

var _ storage.Backend = (*Client)(nil)
