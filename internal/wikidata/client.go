package wikidata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/segmentio/encoding/json"
)

// DefaultAPIURL is the Wikidata action API endpoint
const DefaultAPIURL = "https://www.wikidata.org/w/api.php"

const userAgent = "clippings/0.1 (https://github.com/lehigh-university-libraries/clippings)"

// Client looks up people on Wikidata
type Client struct {
	BaseURL    string
	Language   string
	httpClient *http.Client
}

// Entity is a Wikidata search hit
type Entity struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// NewClient creates a new Wikidata client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		BaseURL:  baseURL,
		Language: "en",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Suggest returns the best matching entity for name, or nil when Wikidata
// has no match.
func (c *Client) Suggest(ctx context.Context, name string) (*Entity, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", name)
	params.Set("language", c.Language)
	params.Set("type", "item")
	params.Set("limit", "1")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Wikidata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("wikidata API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Search []Entity `json:"search"`
		Error  *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Wikidata response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("wikidata API error %s: %s", result.Error.Code, result.Error.Info)
	}
	if len(result.Search) == 0 {
		return nil, nil
	}

	hit := result.Search[0]
	if hit.Label == "" {
		hit.Label = name
	}
	return &hit, nil
}
