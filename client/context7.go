package client

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
	// DefaultBaseURL is the public context7 endpoint
	DefaultBaseURL = "https://context7.com"
	// DefaultTimeout bounds a single HTTP request
	DefaultTimeout = 30 * time.Second

	searchPath = "/api/v2/libs/search"
)

// ErrEmptyQuery is returned when a search is attempted without a query
var ErrEmptyQuery = errors.New("empty search query")

// Library represents a library result from context7.com
type Library struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Branch         string   `json:"branch"`
	LastUpdateDate string   `json:"lastUpdateDate"`
	State          string   `json:"state"`
	TotalTokens    int      `json:"totalTokens"`
	TotalSnippets  int      `json:"totalSnippets"`
	Stars          int      `json:"stars"`
	TrustScore     float64  `json:"trustScore"`
	BenchmarkScore float64  `json:"benchmarkScore"`
	Versions       []string `json:"versions"`
	Score          float64  `json:"score"`
	VIP            bool     `json:"vip"`
}

// SearchResponse represents the API response from the search endpoint
type SearchResponse struct {
	Results []Library `json:"results"`
}

// Source is anything that can search for libraries and fetch their llms.txt
type Source interface {
	SearchLibraries(ctx context.Context, query string) ([]Library, error)
	FetchLLMsTxt(ctx context.Context, libraryID string) (string, error)
}

// Client is an HTTP client for context7.com
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new context7 API client. An empty baseURL uses
// DefaultBaseURL and a non-positive timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchLibraries searches for libraries matching the query
func (c *Client) SearchLibraries(ctx context.Context, query string) ([]Library, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	searchURL := fmt.Sprintf("%s%s?query=%s", c.baseURL, searchPath, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return searchResp.Results, nil
}

// FetchLLMsTxt fetches the llms.txt content for a library
func (c *Client) FetchLLMsTxt(ctx context.Context, libraryID string) (string, error) {
	llmsURL := fmt.Sprintf("%s/%s/llms.txt", c.baseURL, strings.Trim(libraryID, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, llmsURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build llms.txt request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch llms.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llms.txt request failed with status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read llms.txt content: %w", err)
	}

	return string(content), nil
}
