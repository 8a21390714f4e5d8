package musicserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/williamhaley/music-tui/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond

	// tokenHeader carries the access token on JSON API calls
	tokenHeader = "Access-Token"
	// tokenParam carries the access token where headers cannot be set (stream URLs)
	tokenParam = "Access-Token"
)

// Client talks to the music server HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	retryDelay time.Duration
}

// NewClient creates a new music server API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
}

// BaseURL returns the server base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an authenticated GET request and returns the body.
// Includes retry logic with exponential backoff for 5xx server errors.
func (c *Client) doRequest(ctx context.Context, path, token string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set(tokenHeader, token)
		}

		c.logger.Debug("music server request", "path", path, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("music server request failed", "error", err, "path", path)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, domain.ErrInvalidToken

		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%s: %w", path, errNotFound)

		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			// Retry on 5xx server errors
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			c.logger.Warn("music server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", path,
			)
			continue

		case resp.StatusCode != http.StatusOK:
			c.logger.Error("music server request error", "status", resp.StatusCode, "path", path)
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		return body, nil
	}

	c.logger.Error("music server request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// errNotFound is mapped to a domain error by callers that know what was missing
var errNotFound = errors.New("not found")

// GetAlbums returns all albums in server order
func (c *Client) GetAlbums(ctx context.Context, token string) ([]domain.Album, error) {
	body, err := c.doRequest(ctx, "/api/albums", token, nil)
	if err != nil {
		return nil, err
	}

	var resp AlbumsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return MapAlbums(resp.Data), nil
}

// GetAlbum returns a single album with its tracks
func (c *Client) GetAlbum(ctx context.Context, token, albumID string) (*domain.Album, error) {
	body, err := c.doRequest(ctx, "/api/albums/"+url.PathEscape(albumID), token, nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domain.ErrAlbumNotFound
		}
		return nil, err
	}

	var resp AlbumResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Data == nil {
		return nil, domain.ErrAlbumNotFound
	}

	album := MapAlbum(resp.Data)
	return &album, nil
}

// CheckAuth validates a token. The token travels as a query parameter,
// the same way the server accepts it for stream URLs.
func (c *Client) CheckAuth(ctx context.Context, token string) error {
	query := url.Values{}
	query.Set(tokenParam, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("auth check failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("token rejected", "status", resp.StatusCode)
		return domain.ErrInvalidToken
	}
	return nil
}

// TrackURL returns the stream URL for a track, usable directly as a player source
func (c *Client) TrackURL(trackID, token string) string {
	query := url.Values{}
	query.Set(tokenParam, token)
	return fmt.Sprintf("%s/api/track/%s?%s", c.baseURL, url.PathEscape(trackID), query.Encode())
}
