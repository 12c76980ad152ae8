package comments

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsVideoID reports whether s has the shape of a YouTube video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// ExtractVideoID pulls the 11-character id out of a watch, short-link, embed,
// /v/ or shorts URL. A bare id is returned as is.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if IsVideoID(input) {
		return input, true
	}
	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var candidate string
	switch host {
	case "youtu.be":
		candidate = segments[0]
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case segments[0] == "watch":
			candidate = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "v" || segments[0] == "shorts" || segments[0] == "live"):
			candidate = segments[1]
		}
	default:
		return "", false
	}
	if !IsVideoID(candidate) {
		return "", false
	}
	return candidate, true
}

// WatchURL is the canonical watch page for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ThumbnailURL returns the static thumbnail for id. Quality is one of
// default, mqdefault, hqdefault, sddefault or maxresdefault.
func ThumbnailURL(id, quality string) string {
	switch quality {
	case "default", "mqdefault", "hqdefault", "sddefault", "maxresdefault":
	default:
		quality = "hqdefault"
	}
	return "https://i.ytimg.com/vi/" + id + "/" + quality + ".jpg"
}
