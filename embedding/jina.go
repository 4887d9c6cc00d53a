// Package embedding provides the client for the hosted embedding
// provider. Dimensionality and similarity metric are opaque to the rest
// of the system; vectors go straight into the vector index.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Embedding task types understood by the provider. Passages and queries
// are embedded asymmetrically.
const (
	TaskPassage = "retrieval.passage"
	TaskQuery   = "retrieval.query"
)

// Embedder converts text into vectors for the dual index.
type Embedder interface {
	Embed(ctx context.Context, texts []string, task string) ([][]float32, error)
}

const (
	defaultBaseURL = "https://api.jina.ai/v1"
	defaultModel   = "jina-embeddings-v3"
	defaultTimeout = 30 * time.Second

	maxBatch   = 32
	maxRetries = 5
)

// JinaClient calls the Jina /v1/embeddings endpoint (OpenAI-compatible
// response shape). Requests are batched and retried with backoff on
// rate limits and server errors.
type JinaClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewJinaClient creates an embeddings client using the given config.
func NewJinaClient(cfg Config) (*JinaClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	t := cfg.Timeout
	if t == 0 {
		t = defaultTimeout
	}
	return &JinaClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

// Embed returns one vector per input text, preserving input order.
func (c *JinaClient) Embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedBatch(ctx, texts[start:end], task)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *JinaClient) embedBatch(ctx context.Context, texts []string, task string) ([][]float32, error) {
	body := map[string]any{
		"model": c.model,
		"task":  task,
		"input": texts,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/embeddings", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("embedding: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if waitErr := backoff(ctx, attempt, ""); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			ra := resp.Header.Get("Retry-After")
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embedding: provider returned %s", resp.Status)
			if waitErr := backoff(ctx, attempt, ra); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("embedding: read response: %w", err)
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embedding: provider returned %s: %s", resp.Status, payload)
		}

		var parsed struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(payload, &parsed); err != nil {
			return nil, fmt.Errorf("embedding: decode response: %w", err)
		}
		if len(parsed.Data) != len(texts) {
			return nil, fmt.Errorf("embedding: got %d vectors for %d inputs", len(parsed.Data), len(texts))
		}

		vecs := make([][]float32, len(texts))
		for _, d := range parsed.Data {
			if d.Index < 0 || d.Index >= len(vecs) {
				return nil, fmt.Errorf("embedding: vector index %d out of range", d.Index)
			}
			vecs[d.Index] = d.Embedding
		}
		return vecs, nil
	}
	return nil, fmt.Errorf("embedding: retries exhausted: %w", lastErr)
}

// backoff sleeps exponentially (capped at 5s) honoring Retry-After and
// the context deadline.
func backoff(ctx context.Context, attempt int, retryAfter string) error {
	if attempt >= maxRetries {
		return nil
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil {
			d = time.Duration(secs) * time.Second
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
