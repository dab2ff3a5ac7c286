package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrLibraryNotFound is returned by Catalog.FetchLLMsTxt for unknown IDs
var ErrLibraryNotFound = errors.New("library not found")

// Catalog is an in-memory Source that simulates network latency. It backs
// offline mode and tests.
type Catalog struct {
	libraries []Library
	latency   time.Duration

	mu       sync.Mutex
	failures map[string]error
	searches int
}

// NewCatalog creates a catalog over libraries. Each call waits for latency
// before answering, or returns early if the context is cancelled.
func NewCatalog(libraries []Library, latency time.Duration) *Catalog {
	return &Catalog{
		libraries: libraries,
		latency:   latency,
		failures:  make(map[string]error),
	}
}

// FailOn makes searches for query (case-insensitive) return err. A nil err
// removes the failure.
func (c *Catalog) FailOn(query string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(query))
	if err == nil {
		delete(c.failures, key)
		return
	}
	c.failures[key] = err
}

// Searches returns how many searches reached the catalog
func (c *Catalog) Searches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searches
}

// SearchLibraries returns libraries whose ID, title or description contains
// the query, best score first
func (c *Catalog) SearchLibraries(ctx context.Context, query string) ([]Library, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	c.searches++
	failure := c.failures[needle]
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	var matches []Library
	for _, lib := range c.libraries {
		score := matchScore(lib, needle)
		if score == 0 {
			continue
		}
		lib.Score = score
		matches = append(matches, lib)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Stars > matches[j].Stars
	})

	return matches, nil
}

// FetchLLMsTxt renders a small llms.txt document for a catalog library
func (c *Catalog) FetchLLMsTxt(ctx context.Context, libraryID string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	id := "/" + strings.Trim(libraryID, "/")
	for _, lib := range c.libraries {
		if lib.ID != id {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", lib.Title)
		if lib.Description != "" {
			fmt.Fprintf(&b, "> %s\n\n", lib.Description)
		}
		fmt.Fprintf(&b, "- id: %s\n- branch: %s\n- snippets: %d\n", lib.ID, lib.Branch, lib.TotalSnippets)
		return b.String(), nil
	}

	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, libraryID)
}

func (c *Catalog) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// matchScore ranks exact title matches over prefixes over substrings
func matchScore(lib Library, needle string) float64 {
	title := strings.ToLower(lib.Title)
	switch {
	case title == needle:
		return 3
	case strings.HasPrefix(title, needle):
		return 2
	case strings.Contains(title, needle),
		strings.Contains(strings.ToLower(lib.ID), needle):
		return 1.5
	case strings.Contains(strings.ToLower(lib.Description), needle):
		return 1
	default:
		return 0
	}
}

// DemoLibraries is a small fixed catalog used by offline mode
func DemoLibraries() []Library {
	return []Library{
		{ID: "/facebook/react", Title: "React", Description: "The library for web and native user interfaces", Branch: "main", Stars: 235000, TrustScore: 9.8, TotalTokens: 1250000, TotalSnippets: 3400, LastUpdateDate: "2025-09-30T10:00:00Z", Versions: []string{"v19.1.0", "v18.3.1"}},
		{ID: "/remix-run/react-router", Title: "React Router", Description: "Declarative routing for React", Branch: "main", Stars: 54000, TrustScore: 9.5, TotalTokens: 480000, TotalSnippets: 1200, LastUpdateDate: "2025-09-12T10:00:00Z", Versions: []string{"v7.6.0", "v6.30.0"}},
		{ID: "/tanstack/query", Title: "TanStack Query", Description: "Powerful asynchronous state management for TS/JS, React, Solid, Vue and Svelte", Branch: "main", Stars: 45000, TrustScore: 9.4, TotalTokens: 610000, TotalSnippets: 1500, LastUpdateDate: "2025-10-01T10:00:00Z"},
		{ID: "/vuejs/core", Title: "Vue", Description: "The progressive JavaScript framework", Branch: "main", Stars: 50000, TrustScore: 9.6, TotalTokens: 720000, TotalSnippets: 2100, LastUpdateDate: "2025-08-20T10:00:00Z", Versions: []string{"v3.5.0"}},
		{ID: "/sveltejs/svelte", Title: "Svelte", Description: "Cybernetically enhanced web apps", Branch: "main", Stars: 82000, TrustScore: 9.3, TotalTokens: 530000, TotalSnippets: 1700, LastUpdateDate: "2025-09-02T10:00:00Z"},
		{ID: "/charmbracelet/bubbletea", Title: "Bubble Tea", Description: "A powerful little TUI framework", Branch: "main", Stars: 33000, TrustScore: 9.1, TotalTokens: 210000, TotalSnippets: 640, LastUpdateDate: "2025-07-15T10:00:00Z"},
		{ID: "/spf13/cobra", Title: "Cobra", Description: "A Commander for modern Go CLI interactions", Branch: "main", Stars: 40000, TrustScore: 9.2, TotalTokens: 160000, TotalSnippets: 420, LastUpdateDate: "2025-06-30T10:00:00Z"},
		{ID: "/golang/go", Title: "Go", Description: "The Go programming language", Branch: "master", Stars: 128000, TrustScore: 10, TotalTokens: 2300000, TotalSnippets: 5200, LastUpdateDate: "2025-10-10T10:00:00Z", Versions: []string{"go1.25.0", "go1.24.6"}},
	}
}
