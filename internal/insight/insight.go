// Package insight derives best-effort signals from the article corpus by
// calling external AI collaborators. Every operation resolves failures
// to a documented fallback; nothing here is allowed to block reading.
package insight

import (
	"context"
	"errors"

	"feedpulse/internal/article"
	"feedpulse/internal/cache"
	"feedpulse/internal/markup"
)

// Embedder produces a fixed-length embedding vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TextGenerator answers a system+user prompt pair with free-form text.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

var errNotConfigured = errors.New("collaborator not configured")

// Engine runs similarity, recommendation and analysis over a corpus.
// Either collaborator may be nil; the affected operations then always
// take their fallback path.
type Engine struct {
	embedder  Embedder
	generator TextGenerator
	cache     *cache.Cache
}

func New(embedder Embedder, generator TextGenerator) *Engine {
	return &Engine{
		embedder:  embedder,
		generator: generator,
		cache:     cache.New(),
	}
}

// snippet strips markup from the body and truncates to limit runes.
func snippet(a article.Article, limit int) string {
	body := markup.StripTags(a.Body)
	runes := []rune(body)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return body
}
