// Package github fetches a user's public repositories for profile pages.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/devconnector/internal/apperror"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// repoPageSize is how many repositories a profile page shows.
const repoPageSize = "5"

// Client calls the GitHub REST API with the OAuth app's client credentials.
// Responses are passed through verbatim: no retry, no caching.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	logger       *slog.Logger
}

// NewClient creates a Client. An empty baseURL means DefaultBaseURL; a nil
// httpClient means http.DefaultClient.
func NewClient(baseURL, clientID, clientSecret string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpClient,
		logger:       logger,
	}
}

// GetRepos returns the five most recently created repositories of username
// as the raw JSON array GitHub sent. Any non-2xx answer, including 404 for
// an unknown user, is apperror.ErrUpstream.
func (c *Client) GetRepos(ctx context.Context, username string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("per_page", repoPageSize)
	q.Set("sort", "created")
	q.Set("direction", "desc")
	if c.clientID != "" {
		q.Set("client_id", c.clientID)
		q.Set("client_secret", c.clientSecret)
	}
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("User-Agent", "devconnector")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("github: repos request failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("github: fetching repos of %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("github: no profile",
			slog.String("username", username),
			slog.Int("status", resp.StatusCode),
		)
		return nil, apperror.Upstream("No Github profile found")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: reading repos of %s: %w", username, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("github: repos of %s: response is not JSON", username)
	}

	return json.RawMessage(body), nil
}
