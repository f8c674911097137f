// Package weatherapi fetches current conditions, forecast, and air
// quality for a city from WeatherAPI.com.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/upstream"
)

// ErrUnavailable marks any non-success response or network failure from
// the weather provider. The caller owns the degradation policy; the
// client never synthesizes placeholder data.
var ErrUnavailable = errors.New("weather provider unavailable")

// Client is the WeatherAPI.com forecast client.
type Client struct {
	apiKey  string
	baseURL string
	cfg     upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a weather client. The API key must be non-empty;
// config enforces that at startup.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		cfg: upstream.ClientConfig{
			Client:  httpClient,
			Backoff: upstream.DefaultBackoff,
		},
		circuit: upstream.NewBreaker("weatherapi"),
	}
}

// Fetch retrieves the one-day forecast with air-quality data for the
// given city, in Japanese locale.
func (c *Client) Fetch(ctx context.Context, cfg city.Config) (Payload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", c.apiKey)
		values.Set("q", cfg.APIName)
		values.Set("days", "1")
		values.Set("aqi", "yes")
		values.Set("lang", "ja")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, c.cfg, c.circuit, buildRequest)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Payload{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return payload, nil
}
