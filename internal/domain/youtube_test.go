package domain

import (
	"errors"
	"testing"
)

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc_DEF-123", "abc_DEF-123", true},
		{"  https://m.youtube.com/watch?v=xyz  ", "xyz", true},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"https://www.youtube.com/", "", false},
		{"https://www.youtube.com/channel/UC123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ExtractYouTubeID(tt.url)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ExtractYouTubeID(%q) = (%q, %v); want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestSermon_SetYouTubeURL(t *testing.T) {
	s := &Sermon{}
	if err := s.SetYouTubeURL("https://youtu.be/abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.YouTubeVideoID != "abc123" {
		t.Fatalf("video id = %q", s.YouTubeVideoID)
	}

	// Unchanged URL is a no-op even if the id was edited elsewhere.
	s.YouTubeVideoID = "kept"
	if err := s.SetYouTubeURL("https://youtu.be/abc123"); err != nil || s.YouTubeVideoID != "kept" {
		t.Fatalf("unchanged url should be a no-op: %v %q", err, s.YouTubeVideoID)
	}

	err := s.SetYouTubeURL("https://example.com/video")
	if !errors.Is(err, ErrInvalidYouTubeURL) {
		t.Fatalf("err = %v; want ErrInvalidYouTubeURL", err)
	}
	if s.YouTubeURL != "https://youtu.be/abc123" {
		t.Fatalf("invalid url must not be stored: %q", s.YouTubeURL)
	}
}
