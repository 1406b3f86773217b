package article

import (
	"sort"
	"strings"
	"time"
)

// Article is the canonical normalized representation of one feed item.
// Records are immutable once the normalizer builds them; everything
// downstream (trends, similarity, ranking) reads and never writes.
type Article struct {
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"pubDate"`
	Body        string    `json:"content"`
	Categories  []string  `json:"categories"`
	SourceTitle string    `json:"feedTitle,omitempty"`
	Thumbnail   string    `json:"imageUrl,omitempty"`
}

// Identity is the deduplication key: the feed-provided unique id when
// present, else the item's link URL.
func (a Article) Identity() string {
	if a.GUID != "" {
		return a.GUID
	}
	return a.Link
}

// Valid reports whether the record survives the validity gate: non-empty
// title, parseable publication instant, non-empty identity.
func (a Article) Valid() bool {
	return a.Title != "" && !a.PublishedAt.IsZero() && a.Identity() != ""
}

// Dedupe merges per-feed article sequences into one stream. Two records
// collide when their identities are equal; the first seen wins. Invalid
// records are dropped silently, never surfaced as errors.
func Dedupe(sequences ...[]Article) []Article {
	seen := make(map[string]struct{})
	var out []Article

	for _, seq := range sequences {
		for _, a := range seq {
			if !a.Valid() {
				continue
			}
			id := a.Identity()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// Search keeps articles whose title, body, categories or source title
// contain the query, case-insensitively. An empty query keeps everything.
func Search(articles []Article, query string) []Article {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return articles
	}

	var out []Article
	for _, a := range articles {
		if matchesQuery(a, query) {
			out = append(out, a)
		}
	}
	return out
}

func matchesQuery(a Article, query string) bool {
	if strings.Contains(strings.ToLower(a.Title), query) ||
		strings.Contains(strings.ToLower(a.Body), query) ||
		strings.Contains(strings.ToLower(a.SourceTitle), query) {
		return true
	}
	for _, c := range a.Categories {
		if strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}

// ByCategory keeps articles carrying the category exactly, or whose
// source title equals it (the feed name doubles as a grouping category).
func ByCategory(articles []Article, category string) []Article {
	if category == "" {
		return articles
	}

	var out []Article
	for _, a := range articles {
		if a.SourceTitle == category {
			out = append(out, a)
			continue
		}
		for _, c := range a.Categories {
			if c == category {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Between keeps articles published within [from, to]. Zero bounds are
// open ends.
func Between(articles []Article, from, to time.Time) []Article {
	var out []Article
	for _, a := range articles {
		if !from.IsZero() && a.PublishedAt.Before(from) {
			continue
		}
		if !to.IsZero() && a.PublishedAt.After(to) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortByDate returns a copy ordered by publication time.
func SortByDate(articles []Article, newestFirst bool) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].PublishedAt.Before(out[j].PublishedAt)
	})
	return out
}
