package article

import (
	"testing"
	"time"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func valid(guid, title string) Article {
	return Article{GUID: guid, Title: title, Link: "https://example.com/" + guid, PublishedAt: now}
}

func TestIdentity_FallsBackToLink(t *testing.T) {
	a := Article{GUID: "", Link: "https://example.com/x"}
	if got := a.Identity(); got != "https://example.com/x" {
		t.Errorf("expected link fallback, got %q", got)
	}
	a.GUID = "guid-1"
	if got := a.Identity(); got != "guid-1" {
		t.Errorf("expected guid, got %q", got)
	}
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	feedA := []Article{{GUID: "shared", Title: "Markets Rally", Link: "https://example.com/a", PublishedAt: now}}
	feedB := []Article{{GUID: "shared", Title: "MARKETS RALLY", Link: "https://example.com/a", PublishedAt: now}}

	merged := Dedupe(feedA, feedB)
	if len(merged) != 1 {
		t.Fatalf("expected exactly one article, got %d", len(merged))
	}
	if merged[0].Title != "Markets Rally" {
		t.Errorf("first-seen content must win, got %q", merged[0].Title)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	feedA := []Article{valid("1", "One"), valid("2", "Two")}
	feedB := []Article{valid("2", "Two again"), valid("3", "Three")}

	first := Dedupe(feedA, feedB)
	second := Dedupe(feedA, feedB)

	if len(first) != len(second) {
		t.Fatalf("merge is not idempotent: %d vs %d", len(first), len(second))
	}
	seen := make(map[string]struct{})
	for _, a := range first {
		seen[a.Identity()] = struct{}{}
	}
	for _, a := range second {
		if _, ok := seen[a.Identity()]; !ok {
			t.Errorf("identity %q missing from first merge", a.Identity())
		}
	}
}

func TestDedupe_ValidityGate(t *testing.T) {
	in := []Article{
		valid("ok", "Fine"),
		{GUID: "no-title", Link: "https://example.com/b", PublishedAt: now},
		{GUID: "no-date", Title: "No date", Link: "https://example.com/c"},
		{Title: "No identity", PublishedAt: now},
	}
	out := Dedupe(in)
	if len(out) != 1 || out[0].GUID != "ok" {
		t.Fatalf("expected only the valid record to survive, got %+v", out)
	}
}

func TestSearch_MatchesAllTextFields(t *testing.T) {
	corpus := []Article{
		{GUID: "1", Title: "Quantum computing leap", PublishedAt: now},
		{GUID: "2", Title: "Other", Body: "<p>quantum inside body</p>", PublishedAt: now},
		{GUID: "3", Title: "Other", Categories: []string{"Quantum"}, PublishedAt: now},
		{GUID: "4", Title: "Other", SourceTitle: "Quantum Weekly", PublishedAt: now},
		{GUID: "5", Title: "Unrelated", PublishedAt: now},
	}
	got := Search(corpus, "quantum")
	if len(got) != 4 {
		t.Errorf("expected 4 matches, got %d", len(got))
	}
	if all := Search(corpus, ""); len(all) != len(corpus) {
		t.Errorf("empty query must keep everything")
	}
}

func TestByCategory_ExactAndSourceTitle(t *testing.T) {
	corpus := []Article{
		{GUID: "1", Categories: []string{"Tech"}},
		{GUID: "2", Categories: []string{"Technology"}},
		{GUID: "3", SourceTitle: "Tech"},
	}
	got := ByCategory(corpus, "Tech")
	if len(got) != 2 {
		t.Fatalf("expected exact category match plus source title, got %d", len(got))
	}
}

func TestBetween_Bounds(t *testing.T) {
	corpus := []Article{
		{GUID: "old", PublishedAt: now.Add(-48 * time.Hour)},
		{GUID: "edge", PublishedAt: now.Add(-24 * time.Hour)},
		{GUID: "new", PublishedAt: now},
	}
	got := Between(corpus, now.Add(-24*time.Hour), now)
	if len(got) != 2 {
		t.Fatalf("expected inclusive bounds to keep 2, got %d", len(got))
	}
	if open := Between(corpus, time.Time{}, time.Time{}); len(open) != 3 {
		t.Errorf("zero bounds must be open ends")
	}
}

func TestSortByDate(t *testing.T) {
	corpus := []Article{
		{GUID: "b", PublishedAt: now.Add(-time.Hour)},
		{GUID: "c", PublishedAt: now.Add(-2 * time.Hour)},
		{GUID: "a", PublishedAt: now},
	}

	newest := SortByDate(corpus, true)
	if newest[0].GUID != "a" || newest[2].GUID != "c" {
		t.Errorf("newest-first order wrong: %+v", newest)
	}

	oldest := SortByDate(corpus, false)
	if oldest[0].GUID != "c" || oldest[2].GUID != "a" {
		t.Errorf("oldest-first order wrong: %+v", oldest)
	}

	if corpus[0].GUID != "b" {
		t.Error("SortByDate must not mutate its input")
	}
}
