package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"feedpulse/internal/article"
	"feedpulse/internal/fetch"
	"feedpulse/internal/logger"
	"feedpulse/internal/markup"
	"feedpulse/internal/store"
)

// ParseError marks a document that was fetched but could not be parsed.
// Unlike transport failures it is never retried.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser turns remote feed URLs into canonical article records. It
// accepts RSS 2.0, Atom and JSON feeds (whatever gofeed understands).
type Parser struct {
	fetcher *fetch.Fetcher
}

func NewParser(f *fetch.Fetcher) *Parser {
	return &Parser{fetcher: f}
}

// Articles fetches one feed and normalizes its items. When the source
// has no stored title the parsed document's title fills in.
func (p *Parser) Articles(ctx context.Context, source store.Feed, cutoff time.Time) ([]article.Article, error) {
	raw, err := p.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	doc, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return nil, &ParseError{URL: source.URL, Err: err}
	}
	if source.Title == "" {
		source.Title = doc.Title
	}
	return normalizeDoc(doc, source, cutoff), nil
}

// Normalize converts a raw feed document into article records. Items
// published before cutoff are dropped; items without a parseable date
// are dropped silently — recency filtering is a relevance gate, not a
// data-quality check.
func Normalize(raw []byte, source store.Feed, cutoff time.Time) ([]article.Article, error) {
	doc, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return nil, &ParseError{URL: source.URL, Err: err}
	}
	return normalizeDoc(doc, source, cutoff), nil
}

func normalizeDoc(doc *gofeed.Feed, source store.Feed, cutoff time.Time) []article.Article {
	out := make([]article.Article, 0, len(doc.Items))
	for _, item := range doc.Items {
		a, ok := normalizeItem(item, source)
		if !ok {
			continue
		}
		if a.PublishedAt.Before(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// normalizeItem is the per-item failure boundary: a malformed item drops
// itself, never the whole feed.
func normalizeItem(item *gofeed.Item, source store.Feed) (a article.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("dropping malformed feed item", "source", source.Title, "panic", r)
			ok = false
		}
	}()

	if item == nil || item.PublishedParsed == nil {
		return article.Article{}, false
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	a = article.Article{
		GUID:        item.GUID,
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		PublishedAt: *item.PublishedParsed,
		Body:        body,
		Categories:  normalizeCategories(item.Categories),
		SourceTitle: source.Title,
		Thumbnail:   thumbnailURL(item, body),
	}
	return a, a.Valid()
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// thumbnailURL checks, in order: the media:content extension, the
// enclosure field, and finally the first <img> inside the body. Absence
// of all three is not an error.
func thumbnailURL(item *gofeed.Item, body string) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return markup.FirstImageURL(body)
}

// Info is the validation entrypoint result.
type Info struct {
	Valid       bool   `json:"valid"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Validate attempts fetch+parse of a feed URL and reports the outcome
// without storing anything.
func (p *Parser) Validate(ctx context.Context, url string) Info {
	raw, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return Info{Error: "unable to fetch feed"}
	}

	doc, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return Info{Error: "invalid feed document"}
	}

	title := doc.Title
	if title == "" {
		title = "Untitled Feed"
	}
	return Info{Valid: true, Title: title, Description: doc.Description}
}
