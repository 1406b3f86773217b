// Package gemini binds the collaborator interfaces to Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"feedpulse/internal/ratelimit"
)

const (
	generationModel = "gemini-1.5-flash"
	embeddingModel  = "text-embedding-004"
	defaultTimeout  = 30 * time.Second
)

// Client implements insight.Embedder and insight.TextGenerator.
type Client struct {
	client  *genai.Client
	limiter *ratelimit.Limiter
	timeout time.Duration
}

func NewClient(ctx context.Context, apiKey string, limiter *ratelimit.Limiter) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, limiter: limiter, timeout: defaultTimeout}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Complete sends a system+user prompt pair and returns the raw reply
// text. The caller is responsible for parsing whatever comes back.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return "", fmt.Errorf("ai request budget exhausted")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(generationModel)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, fmt.Errorf("ai request budget exhausted")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	em := c.client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini")
	}
	return res.Embedding.Values, nil
}
