package trends

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"

	"feedpulse/internal/article"
	"feedpulse/internal/markup"
)

// The stop-word set is configuration data, not logic; tune the file, not
// this package.
//
//go:embed data/stopwords.txt
var stopWordData string

var stopWords = loadStopWords(stopWordData)

func loadStopWords(data string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return set
}

// Entry is one trending keyword with the articles that support it.
type Entry struct {
	Keyword       string            `json:"keyword"`
	WeightedCount int               `json:"count"`
	Articles      []article.Article `json:"articles"`
}

const (
	titleWeight         = 2
	maxEntries          = 15
	minDistinctArticles = 2
	defaultMinCount     = 3
)

// Extract scans the corpus and returns the ranked trending keywords.
// Title occurrences weigh double (titles signal emphasis); body tokens
// count once per article regardless of repetition (presence, not
// frequency). Keywords below minCount, or supported by fewer than two
// distinct articles, are dropped. Deterministic for identical input.
func Extract(articles []article.Article, minCount int) []Entry {
	if minCount <= 0 {
		minCount = defaultMinCount
	}

	type bucket struct {
		count    int
		articles []article.Article
		seen     map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	add := func(word string, a article.Article, weight int) {
		b := buckets[word]
		if b == nil {
			b = &bucket{seen: make(map[string]struct{})}
			buckets[word] = b
		}
		b.count += weight
		id := a.Identity()
		if _, ok := b.seen[id]; !ok {
			b.seen[id] = struct{}{}
			b.articles = append(b.articles, a)
		}
	}

	for _, a := range articles {
		for _, w := range tokenize(a.Title) {
			add(w, a, titleWeight)
		}

		bodyWords := tokenize(markup.StripTags(a.Body))
		unique := make(map[string]struct{}, len(bodyWords))
		for _, w := range bodyWords {
			if _, dup := unique[w]; dup {
				continue
			}
			unique[w] = struct{}{}
			add(w, a, 1)
		}
	}

	entries := make([]Entry, 0, len(buckets))
	for word, b := range buckets {
		if b.count < minCount || len(b.articles) < minDistinctArticles {
			continue
		}
		entries = append(entries, Entry{Keyword: word, WeightedCount: b.count, Articles: b.articles})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WeightedCount != entries[j].WeightedCount {
			return entries[i].WeightedCount > entries[j].WeightedCount
		}
		return entries[i].Keyword < entries[j].Keyword
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

// tokenize lowercases, keeps letters and whitespace only, splits on
// whitespace and drops tokens that do not qualify as keywords.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	out := words[:0]
	for _, w := range words {
		if validKeyword(w) {
			out = append(out, w)
		}
	}
	return out
}

// validKeyword filters out short tokens, stop words, numeric strings and
// anything that smells like a URL, identifier, path or CSS class.
func validKeyword(w string) bool {
	if len(w) <= 3 {
		return false
	}
	if _, stop := stopWords[w]; stop {
		return false
	}
	hasLetter := false
	for _, r := range w {
		switch r {
		case '.', '_', '-', '/', '\\':
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
