package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GenerateReturnsCandidateText(t *testing.T) {
	var gotPrompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req generateRequest
		if err := json.Unmarshal(raw, &req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": " 黄砂は観測されていません "}]}}]}`))
	}))
	defer ts.Close()

	c := NewClient(&http.Client{Timeout: 5 * time.Second}, "key")
	c.baseURL = ts.URL

	text, err := c.Generate(context.Background(), "要約してください")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPrompt != "要約してください" {
		t.Errorf("prompt not forwarded, got %q", gotPrompt)
	}
	if text != "黄砂は観測されていません" {
		t.Errorf("expected trimmed candidate text, got %q", text)
	}
}

func TestClient_GenerateEmptyCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer ts.Close()

	c := NewClient(&http.Client{Timeout: 5 * time.Second}, "key")
	c.baseURL = ts.URL

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}
