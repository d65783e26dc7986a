// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single registry lookup.
	DefaultTimeout = 60 * time.Second

	// TagLatest is the dist-tag npm publishes stable releases under.
	TagLatest = "latest"

	// maxJSONResponseBytes is the upper bound on a version document (10 MB).
	maxJSONResponseBytes = 10 << 20
)

var (
	// ErrVersionNotFound is returned when the registry has no such package, tag or version.
	ErrVersionNotFound = errors.New("version not found")

	// ErrNoVersion is returned when the registry answers without a version field.
	ErrNoVersion = errors.New("registry response has no version")
)

type (
	// PackageVersion is one published version of a package.
	PackageVersion struct {
		Name    string
		Version string
		Dist    Dist
	}

	// Dist describes the published tarball.
	Dist struct {
		Tarball   string
		Shasum    string
		Integrity string
	}

	// StatusError is returned for unexpected HTTP status codes.
	StatusError struct {
		URL  string
		Code int
	}

	// npmVersion is the JSON wire format of GET /<name>/<version|tag>.
	npmVersion struct {
		Name    string  `json:"name"`
		Version string  `json:"version"`
		Dist    npmDist `json:"dist"`
	}

	// npmDist is the JSON wire format of the dist object.
	npmDist struct {
		Tarball   string `json:"tarball"`
		Shasum    string `json:"shasum"`
		Integrity string `json:"integrity"`
	}

	// Client performs version lookups against one registry.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
		timeout    time.Duration
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("registry request %s: unexpected status %d", e.URL, e.Code)
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithTimeout bounds every lookup. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// NewClient creates a Client for the registry at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "weex/dev",
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Latest returns the version published under the "latest" dist-tag.
func (c *Client) Latest(ctx context.Context, name string) (*PackageVersion, error) {
	return c.Version(ctx, name, TagLatest)
}

// Version resolves spec (a dist-tag or an exact version) for the named package.
// Returns ErrVersionNotFound for 404s and ErrNoVersion when the document lacks
// a version.
func (c *Client) Version(ctx context.Context, name, spec string) (*PackageVersion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/" + name + "/" + url.PathEscape(spec)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s@%s from %s: %w", name, spec, redactURL(c.baseURL), err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s@%s: %w", name, spec, ErrVersionNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: redactURL(reqURL), Code: resp.StatusCode}
	}

	var nv npmVersion
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&nv); err != nil {
		return nil, fmt.Errorf("decoding %s@%s: %w", name, spec, err)
	}
	if nv.Version == "" {
		return nil, fmt.Errorf("%s@%s: %w", name, spec, ErrNoVersion)
	}

	return &PackageVersion{
		Name:    nv.Name,
		Version: nv.Version,
		Dist:    Dist(nv.Dist),
	}, nil
}

// redactURL strips credentials, query parameters and fragments from a URL for
// safe inclusion in error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
