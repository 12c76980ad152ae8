package comments

import (
	"strings"
	"unicode"
)

const (
	// MinTextLength is the shortest cleaned text accepted.
	MinTextLength = 5
	// MaxTextLength is the longest cleaned text accepted.
	MaxTextLength = 1000
)

type runeRange struct{ lo, hi rune }

var emojiRanges = []runeRange{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
	{0x2600, 0x26FF},
	{0x2700, 0x27BF},
	{0x1F900, 0x1F9FF},
	{0x1F018, 0x1F270},
	{0x238C, 0x238C},
	{0x2695, 0x2695},
	{0x26F7, 0x26FA},
	{0x270A, 0x270D},
	// joiners, variation selectors and the keycap mark glue emoji sequences
	{0x200B, 0x200D},
	{0xFE00, 0xFE0F},
	{0x20E3, 0x20E3},
}

func isEmojiRune(r rune) bool {
	for _, rr := range emojiRanges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// IsEmojiOnly reports whether s consists solely of emoji and whitespace.
func IsEmojiOnly(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) || isEmojiRune(r) {
			continue
		}
		return false
	}
	return true
}

// IsValid reports whether c carries enough text to be worth analysing.
func IsValid(c Comment) bool {
	if c.TextDisplay == "" {
		return false
	}
	cleaned := CleanText(c.TextDisplay)
	n := len([]rune(cleaned))
	if n < MinTextLength || n > MaxTextLength {
		return false
	}
	return !IsEmojiOnly(cleaned)
}

func dedupeKey(c Comment) string {
	return strings.ToLower(CleanText(c.TextDisplay))
}

// Filter keeps valid comments, dropping later duplicates by normalized text.
func Filter(list []Comment) []Comment {
	out := make([]Comment, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if !IsValid(c) {
			continue
		}
		key := dedupeKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
