package comments

import (
	"slices"
	"time"
)

const (
	// DefaultPopularLimit bounds the popularity ranking.
	DefaultPopularLimit = 50
	// DefaultRecentLimit bounds the recency ranking.
	DefaultRecentLimit = 100
)

func truncate(list []Comment, limit int) []Comment {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// RankByPopularity returns comments ordered by like count, most liked first.
// Ties keep input order. limit <= 0 keeps everything.
func RankByPopularity(list []Comment, limit int) []Comment {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Comment) int {
		return b.LikeCount - a.LikeCount
	})
	return truncate(out, limit)
}

type dated struct {
	comment Comment
	at      time.Time
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RankByRecency returns comments ordered by publish time, newest first.
// Comments without a parseable timestamp are dropped.
func RankByRecency(list []Comment, limit int) []Comment {
	items := make([]dated, 0, len(list))
	for _, c := range list {
		at, ok := parseTimestamp(c.PublishedAt)
		if !ok {
			continue
		}
		items = append(items, dated{comment: c, at: at})
	}
	slices.SortStableFunc(items, func(a, b dated) int {
		return b.at.Compare(a.at)
	})
	out := make([]Comment, 0, len(items))
	for _, item := range items {
		out = append(out, item.comment)
	}
	return truncate(out, limit)
}
