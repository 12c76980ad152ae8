package comments

import "math"

// Stats aggregates a comment list.
type Stats struct {
	Total        int `json:"total"`
	MainComments int `json:"mainComments"`
	Replies      int `json:"replies"`
	TotalLikes   int `json:"totalLikes"`
	AvgLength    int `json:"avgLength"`
}

// ComputeStats counts top-level comments, replies and likes. AvgLength is the
// rounded mean cleaned-text length.
func ComputeStats(list []Comment) Stats {
	if len(list) == 0 {
		return Stats{}
	}
	var s Stats
	totalLength := 0
	for _, c := range list {
		s.Total++
		if c.IsReply() {
			s.Replies++
		} else {
			s.MainComments++
		}
		s.TotalLikes += c.LikeCount
		totalLength += TextLength(c.TextDisplay)
	}
	s.AvgLength = int(math.Round(float64(totalLength) / float64(s.Total)))
	return s
}
