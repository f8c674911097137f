// Package search queries the Brave web search API for supplementary
// environmental observations (pollen, yellow sand).
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/tenkiweb/tenki/internal/upstream"
)

// Result is one web search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Client is the Brave search client. Construct it only when a
// subscription token is configured; a missing credential is handled one
// layer up by running the annotator without a search provider.
type Client struct {
	token   string
	baseURL string
	cfg     upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		cfg: upstream.ClientConfig{
			Client:  httpClient,
			Backoff: upstream.DefaultBackoff,
		},
		circuit: upstream.NewBreaker("brave-search"),
	}
}

// Search runs a freshness-bounded web search and returns up to five
// results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("count", "5")
		values.Set("freshness", "pd")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", c.token)
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.cfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Web struct {
			Results []Result `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("brave search: decode response: %w", err)
	}

	return payload.Web.Results, nil
}
