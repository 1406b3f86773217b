package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripTags flattens an HTML fragment into plain text with collapsed
// whitespace. Feed bodies arrive with arbitrary markup; consumers need
// bare text for display snippets and tokenization.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(naiveStrip(s))
	}
	return collapse(doc.Text())
}

// FirstImageURL returns the src of the first <img> tag in an HTML
// fragment, or "" when there is none.
func FirstImageURL(s string) string {
	if !strings.Contains(s, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// naiveStrip is the rune-scanner fallback for fragments goquery refuses.
func naiveStrip(content string) string {
	inTag := false
	var b strings.Builder
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
