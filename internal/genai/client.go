// Package genai calls the Google Generative Language API. It serves two
// roles: condensing search snippets for the annotator, and producing the
// AI-fallback weather report when the live provider is down.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/tenkiweb/tenki/internal/upstream"
)

// DefaultModel is the generation model used for summaries and fallbacks.
const DefaultModel = "gemini-2.0-flash-lite"

// ErrEmptyCompletion is returned when the API answers with no candidate
// text.
var ErrEmptyCompletion = errors.New("empty completion")

type Client struct {
	apiKey  string
	model   string
	baseURL string
	cfg     upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		cfg: upstream.ClientConfig{
			Client:  httpClient,
			Backoff: upstream.DefaultBackoff,
		},
		circuit: upstream.NewBreaker("genai"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate completes the prompt and returns the trimmed candidate text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("genai: encode request: %w", err)
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
		req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.cfg, c.circuit, buildRequest)
	if err != nil {
		return "", fmt.Errorf("genai: %w", err)
	}
	defer resp.Body.Close()

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}

	if len(payload.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, p := range payload.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
