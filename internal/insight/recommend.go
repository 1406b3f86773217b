package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"feedpulse/internal/article"
	"feedpulse/internal/logger"
	"feedpulse/internal/metrics"
)

const (
	recommendLimit        = 10
	recommendSnippetRunes = 200
)

const recommendSystemPrompt = "Given a list of articles a user has read and a list of available articles, " +
	"return an array of indices (numbers) for the 10 most relevant recommendations. " +
	"Respond with ONLY the array, example: [1,4,2,7,3,8,9,0,5,6]"

type readSummary struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type poolSummary struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Recommend asks the text-generation collaborator to order the pool by
// relevance to the read history and returns the top ten. Any failure —
// timeout, malformed reply, unusable indices — degrades to the first ten
// pool articles in their original order.
func (e *Engine) Recommend(ctx context.Context, history, pool []article.Article) []article.Article {
	if len(pool) == 0 {
		return nil
	}

	picks, err := e.rankByGenerator(ctx, history, pool)
	if err != nil {
		logger.Warn("recommendations falling back to pool order", "err", err)
		metrics.Global.IncrementAIFallbacks()
		picks = pool
	}

	if len(picks) > recommendLimit {
		picks = picks[:recommendLimit]
	}
	return picks
}

func (e *Engine) rankByGenerator(ctx context.Context, history, pool []article.Article) ([]article.Article, error) {
	if e.generator == nil {
		return nil, errNotConfigured
	}

	payload := struct {
		ReadArticles      []readSummary `json:"readArticles"`
		AvailableArticles []poolSummary `json:"availableArticles"`
	}{
		ReadArticles:      make([]readSummary, 0, len(history)),
		AvailableArticles: make([]poolSummary, 0, len(pool)),
	}
	for _, a := range history {
		payload.ReadArticles = append(payload.ReadArticles, readSummary{
			Title:   a.Title,
			Content: snippet(a, recommendSnippetRunes),
		})
	}
	for i, a := range pool {
		payload.AvailableArticles = append(payload.AvailableArticles, poolSummary{
			Index:   i,
			Title:   a.Title,
			Content: snippet(a, recommendSnippetRunes),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reply, err := e.generator.Complete(ctx, recommendSystemPrompt, string(body))
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}
	var indices []int
	if err := json.Unmarshal(raw, &indices); err != nil {
		return nil, fmt.Errorf("unexpected ranking payload: %w", err)
	}

	out := make([]article.Article, 0, len(indices))
	for _, idx := range indices {
		// Out-of-range indices are dropped, never fatal.
		if idx < 0 || idx >= len(pool) {
			continue
		}
		out = append(out, pool[idx])
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ranking resolved to no articles")
	}
	return out, nil
}
