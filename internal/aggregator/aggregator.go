// Package aggregator drives the fetch→normalize→dedupe cycle across all
// subscribed feeds.
package aggregator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"feedpulse/internal/article"
	"feedpulse/internal/cache"
	"feedpulse/internal/feed"
	"feedpulse/internal/logger"
	"feedpulse/internal/metrics"
	"feedpulse/internal/store"
	"feedpulse/internal/trends"
)

const trendCacheTTL = 10 * time.Minute

type Aggregator struct {
	store  store.Store
	parser *feed.Parser
	window time.Duration
	cache  *cache.Cache
}

func New(st store.Store, parser *feed.Parser, window time.Duration) *Aggregator {
	return &Aggregator{
		store:  st,
		parser: parser,
		window: window,
		cache:  cache.New(),
	}
}

// Cutoff is the recency gate for the current cycle: now minus the
// freshness window.
func (ag *Aggregator) Cutoff() time.Time {
	return time.Now().Add(-ag.window)
}

// Refresh fetches every subscribed feed concurrently and merges the
// results into one deduplicated stream. A feed failing is logged and
// skipped; partial success is the expected steady state. Only an empty
// worklist error from the store surfaces.
func (ag *Aggregator) Refresh(ctx context.Context) ([]article.Article, error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRefreshTime(time.Since(start))
	}()

	feeds, err := ag.store.List(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	merged := ag.collect(ctx, feeds, ag.Cutoff())
	metrics.Global.SetLastRun()
	return merged, nil
}

// collect runs one fetch-and-normalize goroutine per feed and merges
// after every feed has resolved. Results land in completion order, which
// is the order first-seen-wins deduplication observes.
func (ag *Aggregator) collect(ctx context.Context, feeds []store.Feed, cutoff time.Time) []article.Article {
	results := make(chan []article.Article, len(feeds))
	var wg sync.WaitGroup

	for _, f := range feeds {
		wg.Add(1)
		go func(f store.Feed) {
			defer wg.Done()
			items, err := ag.parser.Articles(ctx, f, cutoff)
			if err != nil {
				logger.Warn("feed failed, skipping", "url", f.URL, "err", err)
				metrics.Global.IncrementFeedFailures()
				return
			}
			metrics.Global.IncrementFeedsFetched()
			results <- items
		}(f)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var sequences [][]article.Article
	total := 0
	for items := range results {
		if len(items) == 0 {
			continue
		}
		total += len(items)
		sequences = append(sequences, items)
	}

	// Merging happens strictly after all fetches resolve, so no locking
	// is needed around the dedup state.
	merged := article.Dedupe(sequences...)
	metrics.Global.AddArticlesCollected(len(merged))
	metrics.Global.AddDuplicatesFiltered(total - len(merged))
	logger.Info("aggregation cycle complete", "feeds", len(feeds), "articles", len(merged), "dropped", total-len(merged))
	return merged
}

// Trends returns the trending keywords for a corpus. Results are cached
// on the identity set, so an unchanged corpus skips the recompute; the
// cache is an optimization, never a correctness requirement.
func (ag *Aggregator) Trends(articles []article.Article, minCount int) []trends.Entry {
	key := fmt.Sprintf("trends:%s:%d", identityHash(articles), minCount)
	if v, ok := ag.cache.Get(key); ok {
		if entries, isEntries := v.([]trends.Entry); isEntries {
			return entries
		}
	}

	entries := trends.Extract(articles, minCount)
	ag.cache.Set(key, entries, trendCacheTTL)
	return entries
}

func identityHash(articles []article.Article) string {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.Identity())
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
