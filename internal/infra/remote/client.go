// Package remote fetches the specialty taxonomy from the upstream directory
// API over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/taxocache/internal/core/domain"
)

// Client fetches the taxonomy over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a taxonomy client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchTaxonomy retrieves the current specialty taxonomy.
//
// Error text is shaped for the classifier: transport failures carry "fetch"
// so they classify as network, and non-2xx responses carry "NNN StatusText"
// so the status branches fire.
func (c *Client) FetchTaxonomy(ctx context.Context) (*domain.TaxonomySnapshot, error) {
	url := c.baseURL + "/specialties"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch specialties: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("specialties endpoint returned %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var snapshot domain.TaxonomySnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(snapshot.Names) == 0 {
		return nil, fmt.Errorf("specialties endpoint returned an empty taxonomy")
	}
	if snapshot.Counts == nil {
		snapshot.Counts = make(map[string]int)
	}

	return &snapshot, nil
}
