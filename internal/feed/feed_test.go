package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedpulse/internal/fetch"
	"feedpulse/internal/store"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Example Feed</title>
<description>An example feed</description>
<item>
  <title>Fresh with media thumbnail</title>
  <link>https://example.com/fresh</link>
  <guid>fresh-1</guid>
  <pubDate>Mon, 02 Jun 2025 12:00:00 +0000</pubDate>
  <description>Something happened</description>
  <media:content url="https://cdn.example.com/media.jpg" medium="image"/>
  <enclosure url="https://cdn.example.com/enclosure.jpg" type="image/jpeg" length="1000"/>
  <category>Tech</category>
  <category>   </category>
</item>
<item>
  <title>At the cutoff boundary</title>
  <link>https://example.com/boundary</link>
  <guid>boundary-1</guid>
  <pubDate>Sun, 01 Jun 2025 12:00:00 +0000</pubDate>
  <description>Right on time</description>
  <enclosure url="https://cdn.example.com/boundary.jpg" type="image/jpeg" length="1000"/>
</item>
<item>
  <title>Too old</title>
  <link>https://example.com/old</link>
  <guid>old-1</guid>
  <pubDate>Fri, 30 May 2025 12:00:00 +0000</pubDate>
  <description>Stale</description>
</item>
<item>
  <title>No date at all</title>
  <link>https://example.com/undated</link>
  <guid>undated-1</guid>
  <description>Who knows when</description>
</item>
<item>
  <title>Thumbnail from body markup</title>
  <link>https://example.com/bodyimg</link>
  <guid>bodyimg-1</guid>
  <pubDate>Mon, 02 Jun 2025 08:00:00 +0000</pubDate>
  <content:encoded><![CDATA[<p>Lead paragraph</p><img src="https://cdn.example.com/inline.png">]]></content:encoded>
</item>
</channel>
</rss>`

var cutoff = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	source := store.Feed{URL: "https://example.com/rss", Title: "Example"}
	articles, err := Normalize([]byte(sampleRSS), source, cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byGUID := make(map[string]int)
	for i, a := range articles {
		byGUID[a.GUID] = i
	}

	if _, ok := byGUID["old-1"]; ok {
		t.Error("item published before cutoff must be dropped")
	}
	if _, ok := byGUID["undated-1"]; ok {
		t.Error("item without a parseable date must be dropped silently")
	}
	if _, ok := byGUID["boundary-1"]; !ok {
		t.Error("item published exactly at cutoff must be kept")
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 surviving articles, got %d", len(articles))
	}

	fresh := articles[byGUID["fresh-1"]]
	if fresh.Thumbnail != "https://cdn.example.com/media.jpg" {
		t.Errorf("media:content must beat the enclosure, got %q", fresh.Thumbnail)
	}
	if len(fresh.Categories) != 1 || fresh.Categories[0] != "Tech" {
		t.Errorf("blank categories must be dropped, got %v", fresh.Categories)
	}
	if fresh.SourceTitle != "Example" {
		t.Errorf("source title not attached, got %q", fresh.SourceTitle)
	}

	boundary := articles[byGUID["boundary-1"]]
	if boundary.Thumbnail != "https://cdn.example.com/boundary.jpg" {
		t.Errorf("enclosure fallback failed, got %q", boundary.Thumbnail)
	}

	bodyimg := articles[byGUID["bodyimg-1"]]
	if bodyimg.Thumbnail != "https://cdn.example.com/inline.png" {
		t.Errorf("inline <img> fallback failed, got %q", bodyimg.Thumbnail)
	}
	if bodyimg.Body == "" {
		t.Error("content:encoded should populate the body")
	}
}

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good" {
			w.Write([]byte(sampleRSS))
			return
		}
		w.Write([]byte("<html># definitely not a feed"))
	}))
	defer srv.Close()

	p := NewParser(fetch.New(fetch.Options{Timeout: 2 * time.Second, Retries: 1, Delay: time.Millisecond}))

	info := p.Validate(context.Background(), srv.URL+"/good")
	if !info.Valid {
		t.Fatalf("expected valid feed, got %+v", info)
	}
	if info.Title != "Example Feed" {
		t.Errorf("expected parsed title, got %q", info.Title)
	}

	info = p.Validate(context.Background(), srv.URL+"/bad")
	if info.Valid {
		t.Error("expected invalid result for a non-feed document")
	}
}

func TestNormalize_BadDocument(t *testing.T) {
	_, err := Normalize([]byte("this is not a feed"), store.Feed{URL: "https://example.com/bad"}, cutoff)
	if err == nil {
		t.Fatal("expected ParseError for garbage input")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}
