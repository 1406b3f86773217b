package insight

import (
	"context"
	"math"
	"sort"

	"feedpulse/internal/article"
	"feedpulse/internal/logger"
	"feedpulse/internal/metrics"
)

const (
	similarPoolLimit  = 10 // embedding calls are the cost driver
	targetPrefixRunes = 500
	poolPrefixRunes   = 200
	defaultSimilarK   = 5
)

// Similar returns the k pool articles most semantically related to
// target, excluding target itself. Any embedding failure degrades to the
// first k pool candidates in their original order.
func (e *Engine) Similar(ctx context.Context, target article.Article, pool []article.Article, k int) []article.Article {
	if k <= 0 {
		k = defaultSimilarK
	}

	candidates := make([]article.Article, 0, similarPoolLimit)
	for _, a := range pool {
		if a.Identity() == target.Identity() {
			continue
		}
		candidates = append(candidates, a)
		if len(candidates) == similarPoolLimit {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ranked, err := e.rankByEmbedding(ctx, target, candidates)
	if err != nil {
		logger.Warn("similarity falling back to pool order", "err", err)
		metrics.Global.IncrementAIFallbacks()
		ranked = candidates
	}

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func (e *Engine) rankByEmbedding(ctx context.Context, target article.Article, candidates []article.Article) ([]article.Article, error) {
	if e.embedder == nil {
		return nil, errNotConfigured
	}

	targetVec, err := e.embedder.Embed(ctx, embedText(target, targetPrefixRunes))
	if err != nil {
		return nil, err
	}

	type scored struct {
		article article.Article
		score   float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, a := range candidates {
		vec, err := e.embedder.Embed(ctx, embedText(a, poolPrefixRunes))
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{a, cosineSimilarity(targetVec, vec)})
	}

	// Stable: ties keep original pool order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]article.Article, len(ranked))
	for i, s := range ranked {
		out[i] = s.article
	}
	return out, nil
}

func embedText(a article.Article, limit int) string {
	return a.Title + "\n" + snippet(a, limit)
}

// cosineSimilarity is dot(a,b) / (|a|*|b|). Zero when either vector has
// no magnitude, including the empty vector.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		magA += float64(v) * float64(v)
	}
	for _, v := range b {
		magB += float64(v) * float64(v)
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
