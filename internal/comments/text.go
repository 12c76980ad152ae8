package comments

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanText trims s and collapses whitespace runs to a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextLength is the rune count of the cleaned text.
func TextLength(s string) int {
	return utf8.RuneCountInString(CleanText(s))
}

// PlainText renders the display text of c without markup. Line breaks and
// paragraph tags become newlines; entities are decoded.
func PlainText(c Comment) string {
	return StripHTML(c.SourceText())
}

// StripHTML converts an HTML fragment into plain text.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "br", "p", "div", "li":
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
			}
		}
	}
}
