package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidYouTubeURL is returned when a sermon's video URL does not point
// at a recognizable YouTube video.
var ErrInvalidYouTubeURL = errors.New("invalid YouTube URL")

var (
	youtubeHostRE = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com|youtu\.be)/.+$`)

	// Order matters only for readability; the shapes are disjoint.
	youtubeIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)youtube\.com/watch\?(?:[^#\s]*&)?v=([^&#\s]+)`),
		regexp.MustCompile(`(?i)youtube\.com/embed/([^?&/#\s]+)`),
		regexp.MustCompile(`(?i)youtube\.com/v/([^?&/#\s]+)`),
		regexp.MustCompile(`(?i)youtu\.be/([^?&/#\s]+)`),
		regexp.MustCompile(`(?i)youtube\.com/shorts/([^?&/#\s]+)`),
	}

	videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ExtractYouTubeID returns the video id referenced by url. Accepted shapes are
// watch?v=ID, embed/ID, v/ID, youtu.be/ID and shorts/ID, with or without a
// scheme and www. prefix. ok is false when nothing matches.
func ExtractYouTubeID(url string) (id string, ok bool) {
	url = strings.TrimSpace(url)
	if !youtubeHostRE.MatchString(url) {
		return "", false
	}
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) == 2 && videoIDRE.MatchString(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

// SetYouTubeURL stores raw as the sermon's video URL and derives the video id
// from it. It is a no-op when raw equals the current URL, so unrelated
// updates never re-derive the id. An unrecognized URL leaves the sermon
// untouched and returns ErrInvalidYouTubeURL.
func (s *Sermon) SetYouTubeURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == s.YouTubeURL && s.YouTubeVideoID != "" {
		return nil
	}
	id, ok := ExtractYouTubeID(raw)
	if !ok {
		return ErrInvalidYouTubeURL
	}
	s.YouTubeURL = raw
	s.YouTubeVideoID = id
	return nil
}
