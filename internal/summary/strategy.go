package summary

import (
	"fmt"
	"strings"

	"ytpulse/internal/comments"
)

// Strategy selects which comments are summarized.
type Strategy string

const (
	StrategyFull      Strategy = "full"
	StrategyPopular   Strategy = "popular"
	StrategyRecent    Strategy = "recent"
	StrategyPositive  Strategy = "positive"
	StrategyNegative  Strategy = "negative"
	StrategyNeutral   Strategy = "neutral"
	StrategySentiment Strategy = "sentiment"
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{
	StrategyFull,
	StrategyPopular,
	StrategyRecent,
	StrategyPositive,
	StrategyNegative,
	StrategyNeutral,
	StrategySentiment,
}

// ParseStrategy validates name. An empty name selects StrategyFull.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StrategyFull, nil
	}
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown summary strategy %q", name)
}

// Limits bound the subset each strategy selects. Zero means unbounded.
type Limits struct {
	Full      int
	Popular   int
	Recent    int
	Sentiment int
}

// DefaultLimits returns the stock selection sizes.
func DefaultLimits() Limits {
	return Limits{
		Popular:   comments.DefaultPopularLimit,
		Recent:    comments.DefaultRecentLimit,
		Sentiment: 100,
	}
}

// Select returns the strategy's subset of list. The mixed sentiment strategy
// takes half the sentiment limit from each bucket, positive first.
func Select(list []comments.Comment, strategy Strategy, limits Limits) []comments.Comment {
	switch strategy {
	case StrategyPopular:
		return comments.RankByPopularity(list, limits.Popular)
	case StrategyRecent:
		return comments.RankByRecency(list, limits.Recent)
	case StrategyPositive, StrategyNegative, StrategyNeutral:
		bucket := comments.ClassifySentiment(list).Get(comments.Sentiment(strategy))
		return head(bucket, limits.Sentiment)
	case StrategySentiment:
		buckets := comments.ClassifySentiment(list)
		per := (limits.Sentiment + 1) / 2
		if limits.Sentiment <= 0 {
			per = 0
		}
		out := make([]comments.Comment, 0)
		out = append(out, head(buckets.Positive, per)...)
		out = append(out, head(buckets.Negative, per)...)
		out = append(out, head(buckets.Neutral, per)...)
		return out
	default:
		return head(list, limits.Full)
	}
}

func head(list []comments.Comment, limit int) []comments.Comment {
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return append([]comments.Comment(nil), list...)
}
