package youtube

import "ytpulse/internal/comments"

type videoListResponse struct {
	Items []videoResource `json:"items"`
}

type videoResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Thumbnails   map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type commentThreadListResponse struct {
	Items         []commentThreadResource `json:"items"`
	NextPageToken string                  `json:"nextPageToken"`
}

type commentThreadResource struct {
	ID      string `json:"id"`
	Snippet struct {
		TopLevelComment commentResource `json:"topLevelComment"`
		TotalReplyCount int             `json:"totalReplyCount"`
	} `json:"snippet"`
	Replies struct {
		Comments []commentResource `json:"comments"`
	} `json:"replies"`
}

type commentResource struct {
	ID      string `json:"id"`
	Snippet struct {
		TextDisplay       string `json:"textDisplay"`
		TextOriginal      string `json:"textOriginal"`
		AuthorDisplayName string `json:"authorDisplayName"`
		AuthorChannelID   struct {
			Value string `json:"value"`
		} `json:"authorChannelId"`
		LikeCount   int    `json:"likeCount"`
		PublishedAt string `json:"publishedAt"`
		UpdatedAt   string `json:"updatedAt"`
	} `json:"snippet"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (r commentResource) toComment() comments.Comment {
	return comments.Comment{
		ID:                r.ID,
		TextDisplay:       r.Snippet.TextDisplay,
		TextOriginal:      r.Snippet.TextOriginal,
		AuthorDisplayName: r.Snippet.AuthorDisplayName,
		AuthorChannelID:   r.Snippet.AuthorChannelID.Value,
		LikeCount:         max(r.Snippet.LikeCount, 0),
		PublishedAt:       r.Snippet.PublishedAt,
		UpdatedAt:         r.Snippet.UpdatedAt,
	}
}

func (r commentThreadResource) toThread() comments.Thread {
	thread := comments.Thread{
		TopLevel:        r.Snippet.TopLevelComment.toComment(),
		TotalReplyCount: max(r.Snippet.TotalReplyCount, 0),
	}
	for _, reply := range r.Replies.Comments {
		thread.Replies = append(thread.Replies, reply.toComment())
	}
	return thread
}

func (r videoResource) toVideoInfo(id string) comments.VideoInfo {
	info := comments.VideoInfo{
		VideoID:      id,
		Title:        r.Snippet.Title,
		Description:  r.Snippet.Description,
		ChannelTitle: r.Snippet.ChannelTitle,
		PublishedAt:  r.Snippet.PublishedAt,
		ViewCount:    r.Statistics.ViewCount,
		LikeCount:    r.Statistics.LikeCount,
		CommentCount: r.Statistics.CommentCount,
		VideoURL:     comments.WatchURL(id),
	}
	for _, quality := range []string{"maxres", "high", "medium", "default"} {
		if thumb, ok := r.Snippet.Thumbnails[quality]; ok && thumb.URL != "" {
			info.ThumbnailURL = thumb.URL
			break
		}
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = comments.ThumbnailURL(id, "hqdefault")
	}
	return info
}
