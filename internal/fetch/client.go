// Package fetch downloads RFC and Internet-Draft XML from the public
// IETF archives into a local cache directory. A document already in
// the cache is never fetched again.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultRFCURL   = "https://www.rfc-editor.org/rfc/rfc%d.xml"
	defaultDraftURL = "https://www.ietf.org/archive/id/%s.xml"

	// maxDocumentBytes bounds a single download. The largest RFC XML
	// files are a few megabytes.
	maxDocumentBytes = 64 << 20

	retryDelay = 1 * time.Second
)

// Client fetches documents over HTTPS and caches them on disk.
type Client struct {
	cacheDir   string
	attempts   uint
	delay      time.Duration
	httpClient *http.Client
	log        *slog.Logger

	// Archive URL templates, overridable for mirrors.
	rfcURL   string
	draftURL string
}

func NewClient(cacheDir string, timeout time.Duration, attempts uint, log *slog.Logger) *Client {
	if attempts == 0 {
		attempts = 1
	}
	return &Client{
		cacheDir: cacheDir,
		attempts: attempts,
		delay:    retryDelay,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:      log,
		rfcURL:   defaultRFCURL,
		draftURL: defaultDraftURL,
	}
}

// RFC fetches the XML source of an RFC by number and returns the
// cached file path.
func (c *Client) RFC(ctx context.Context, number int) (string, error) {
	if number <= 0 {
		return "", fmt.Errorf("invalid rfc number %d", number)
	}
	return c.fetch(ctx, fmt.Sprintf(c.rfcURL, number), fmt.Sprintf("rfc%d.xml", number))
}

// Draft fetches the XML source of an Internet-Draft by name, such as
// draft-ietf-oauth-par-10, and returns the cached file path.
func (c *Client) Draft(ctx context.Context, name string) (string, error) {
	name = strings.TrimSuffix(name, ".xml")
	if name == "" {
		return "", fmt.Errorf("empty draft name")
	}
	return c.fetch(ctx, fmt.Sprintf(c.draftURL, name), name+".xml")
}

// URL fetches an arbitrary document URL. name overrides the cache
// file's base name; when empty the last URL path segment is used.
func (c *Client) URL(ctx context.Context, rawURL, name string) (string, error) {
	if name = strings.TrimSuffix(name, ".xml"); name != "" {
		return c.fetch(ctx, rawURL, name+".xml")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return "", fmt.Errorf("cannot derive cache name from %q", rawURL)
	}
	return c.fetch(ctx, rawURL, base)
}

// fetch returns the cache path for name, downloading it first when the
// cache has no copy. The file appears atomically: a partial download
// never lands under its final name.
func (c *Client) fetch(ctx context.Context, fetchURL, name string) (string, error) {
	dest := filepath.Join(c.cacheDir, name)
	if _, err := os.Stat(dest); err == nil {
		c.log.Debug("cache hit", "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	c.log.Info("fetching document", "url", fetchURL)
	var body []byte
	err := retry.Do(
		func() error {
			data, err := c.get(ctx, fetchURL)
			if err != nil {
				return err
			}
			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(c.cacheDir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("move into cache: %w", err)
	}

	c.log.Info("cached document", "path", dest, "bytes", len(body))
	return dest, nil
}

func (c *Client) get(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", "rfc2texi")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("get %s: status %d", fetchURL, resp.StatusCode)
		// Client errors will not change between attempts. Rate limits
		// and server errors might.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fetchURL, err)
	}
	return body, nil
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
