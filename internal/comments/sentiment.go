package comments

import "strings"

// Sentiment labels a comment by keyword match.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

var (
	positiveKeywords = []string{"好", "棒", "喜欢", "爱", "赞", "优秀", "完美", "amazing", "great", "love", "awesome", "perfect", "excellent"}
	negativeKeywords = []string{"差", "烂", "讨厌", "不好", "糟糕", "垃圾", "bad", "hate", "terrible", "awful", "worst", "sucks"}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Classify matches the lower-cased display text against both keyword sets.
// A comment matching both sets, or neither, is neutral.
func Classify(c Comment) Sentiment {
	text := strings.ToLower(c.TextDisplay)
	pos := containsAny(text, positiveKeywords)
	neg := containsAny(text, negativeKeywords)
	switch {
	case pos && !neg:
		return Positive
	case neg && !pos:
		return Negative
	default:
		return Neutral
	}
}

// Buckets partitions comments by sentiment, preserving input order.
type Buckets struct {
	Positive []Comment `json:"positive"`
	Negative []Comment `json:"negative"`
	Neutral  []Comment `json:"neutral"`
}

// Get returns the bucket for s.
func (b Buckets) Get(s Sentiment) []Comment {
	switch s {
	case Positive:
		return b.Positive
	case Negative:
		return b.Negative
	default:
		return b.Neutral
	}
}

// ClassifySentiment assigns every comment to exactly one bucket.
func ClassifySentiment(list []Comment) Buckets {
	var b Buckets
	for _, c := range list {
		switch Classify(c) {
		case Positive:
			b.Positive = append(b.Positive, c)
		case Negative:
			b.Negative = append(b.Negative, c)
		default:
			b.Neutral = append(b.Neutral, c)
		}
	}
	return b
}
