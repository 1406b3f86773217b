package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedpulse/internal/article"
	"feedpulse/internal/logger"
	"feedpulse/internal/metrics"
)

const (
	analyzeSnippetRunes = 2000
	analysisCacheTTL    = 6 * time.Hour
)

const analyzeSystemPrompt = `You are an AI assistant that analyzes news articles. ` +
	`Return ONLY a JSON object with this exact structure, no markdown formatting or other text: ` +
	`{"summary": "2-3 sentence summary", "sentiment": "positive|negative|neutral", ` +
	`"keywords": ["topic1", "topic2"], "readingTime": estimated_minutes_number}`

// Analysis is the per-article AI enrichment payload.
type Analysis struct {
	Summary     string   `json:"summary"`
	Sentiment   string   `json:"sentiment"`
	Keywords    []string `json:"keywords"`
	ReadingTime int      `json:"readingTime"`
}

func fallbackAnalysis() Analysis {
	return Analysis{Summary: "Analysis unavailable", Sentiment: "neutral", ReadingTime: 5}
}

// Analyze produces summary, sentiment, keywords and reading time for one
// article. Results are cached by content hash; any collaborator failure
// returns the documented fallback values.
func (e *Engine) Analyze(ctx context.Context, a article.Article) Analysis {
	key := e.cache.GenerateKey(a.Title, a.Body)
	if v, ok := e.cache.Get(key); ok {
		if cached, isAnalysis := v.(Analysis); isAnalysis {
			return cached
		}
	}

	res, err := e.analyze(ctx, a)
	if err != nil {
		logger.Warn("analysis falling back", "title", a.Title, "err", err)
		metrics.Global.IncrementAIFallbacks()
		return fallbackAnalysis()
	}

	e.cache.Set(key, res, analysisCacheTTL)
	return res
}

func (e *Engine) analyze(ctx context.Context, a article.Article) (Analysis, error) {
	if e.generator == nil {
		return Analysis{}, errNotConfigured
	}

	user := fmt.Sprintf("Title: %s\n\nContent: %s", a.Title, snippet(a, analyzeSnippetRunes))
	reply, err := e.generator.Complete(ctx, analyzeSystemPrompt, user)
	if err != nil {
		return Analysis{}, err
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return Analysis{}, err
	}
	var res Analysis
	if err := json.Unmarshal(raw, &res); err != nil {
		return Analysis{}, fmt.Errorf("unexpected analysis payload: %w", err)
	}

	if res.Sentiment == "" {
		res.Sentiment = "neutral"
	}
	if res.ReadingTime <= 0 {
		res.ReadingTime = 5
	}
	return res, nil
}
