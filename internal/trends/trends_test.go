package trends

import (
	"testing"
	"time"

	"feedpulse/internal/article"
)

var published = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func art(guid, title, body string) article.Article {
	return article.Article{GUID: guid, Title: title, Link: "https://example.com/" + guid, PublishedAt: published, Body: body}
}

func find(entries []Entry, keyword string) (Entry, bool) {
	for _, e := range entries {
		if e.Keyword == keyword {
			return e, true
		}
	}
	return Entry{}, false
}

func TestExtract_EmptyCorpus(t *testing.T) {
	if got := Extract(nil, 3); len(got) != 0 {
		t.Errorf("empty corpus must yield empty result, got %v", got)
	}
}

func TestExtract_TitleWeightAsymmetry(t *testing.T) {
	// "markets" appears once in each title and nowhere in the bodies
	// (single short words never qualify). Two articles, weight 2 each.
	corpus := []article.Article{
		art("1", "Markets Rally", "up"),
		art("2", "Markets Slide", "down"),
	}
	entries := Extract(corpus, 3)
	e, ok := find(entries, "markets")
	if !ok {
		t.Fatalf("expected 'markets' in %v", entries)
	}
	if e.WeightedCount != 4 {
		t.Errorf("title-only occurrences across 2 articles must weigh 2x2=4, got %d", e.WeightedCount)
	}
	if len(e.Articles) != 2 {
		t.Errorf("expected 2 supporting articles, got %d", len(e.Articles))
	}
}

func TestExtract_BodyRepetitionDoesNotInflate(t *testing.T) {
	corpus := []article.Article{
		art("1", "One", "blockchain blockchain blockchain blockchain"),
		art("2", "Two", "blockchain again"),
	}
	entries := Extract(corpus, 2)
	e, ok := find(entries, "blockchain")
	if !ok {
		t.Fatalf("expected 'blockchain' in %v", entries)
	}
	// Once per article regardless of repetition: 1 + 1.
	if e.WeightedCount != 2 {
		t.Errorf("expected weighted count 2, got %d", e.WeightedCount)
	}
}

func TestExtract_SingleArticleKeywordExcluded(t *testing.T) {
	// Heavy repetition in one title, but only one supporting article.
	corpus := []article.Article{
		art("1", "fusion fusion fusion fusion fusion", "other     words entirely"),
		art("2", "Unrelated Headline", "nothing shared"),
	}
	entries := Extract(corpus, 3)
	if _, ok := find(entries, "fusion"); ok {
		t.Error("a keyword supported by a single article must never be returned")
	}
}

func TestExtract_MinCountThreshold(t *testing.T) {
	// "solar" is in two bodies: weighted count 2, below minCount 3.
	corpus := []article.Article{
		art("1", "One", "solar panels"),
		art("2", "Two", "solar output"),
	}
	if entries := Extract(corpus, 3); len(entries) != 0 {
		t.Errorf("below-threshold keywords must be dropped, got %v", entries)
	}
	// With minCount 2 the same corpus qualifies.
	entries := Extract(corpus, 2)
	if _, ok := find(entries, "solar"); !ok {
		t.Errorf("expected 'solar' at minCount 2, got %v", entries)
	}
}

func TestExtract_MarkupAndStopWordsSuppressed(t *testing.T) {
	corpus := []article.Article{
		art("1", "Election Results", `<div class="article-body"><p>election coverage</p></div>`),
		art("2", "Election Night", `<span style="color:red">election updates</span>`),
	}
	entries := Extract(corpus, 2)
	for _, banned := range []string{"div", "span", "class", "style", "article"} {
		if _, ok := find(entries, banned); ok {
			t.Errorf("markup vocabulary %q leaked into trends", banned)
		}
	}
	if _, ok := find(entries, "election"); !ok {
		t.Errorf("expected 'election' to trend, got %v", entries)
	}
}

func TestExtract_SortedAndTruncated(t *testing.T) {
	// 20 distinct keywords, each in two titles with increasing extra weight.
	var corpus []article.Article
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo", "sierra", "tango",
	}
	for i, w := range words {
		title := w
		for j := 0; j < i; j++ {
			title += " " + w
		}
		corpus = append(corpus,
			art(w+"-1", title, "padding text"),
			art(w+"-2", w, "padding text"))
	}

	entries := Extract(corpus, 3)
	if len(entries) != 15 {
		t.Fatalf("expected truncation to top 15, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].WeightedCount > entries[i-1].WeightedCount {
			t.Fatalf("entries not sorted descending at %d: %v", i, entries)
		}
	}
	// "tango" has the heaviest title repetition and must rank first.
	if entries[0].Keyword != "tango" {
		t.Errorf("expected 'tango' first, got %q", entries[0].Keyword)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	corpus := []article.Article{
		art("1", "Storm Warning Issued", "coastal storm approaching"),
		art("2", "Storm Damage Reported", "storm aftermath and warning signs"),
		art("3", "Warning Extended", "storm warning remains"),
	}
	first := Extract(corpus, 3)
	for i := 0; i < 10; i++ {
		again := Extract(corpus, 3)
		if len(again) != len(first) {
			t.Fatalf("non-deterministic length: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j].Keyword != first[j].Keyword || again[j].WeightedCount != first[j].WeightedCount {
				t.Fatalf("non-deterministic order at %d: %v vs %v", j, again[j], first[j])
			}
		}
	}
}

func TestValidKeyword(t *testing.T) {
	cases := []struct {
		word string
		want bool
	}{
		{"economy", true},
		{"cat", false},          // too short
		{"the", false},          // stop word (and short)
		{"content", false},      // stop word
		{"12345", false},        // no letters
		{"some.com", false},     // dot
		{"snake_case", false},   // underscore
		{"css-class", false},    // dash
		{"a/b/path", false},     // slash
		{"back\\slash", false},  // backslash
	}
	for _, tc := range cases {
		if got := validKeyword(tc.word); got != tc.want {
			t.Errorf("validKeyword(%q) = %v, want %v", tc.word, got, tc.want)
		}
	}
}
