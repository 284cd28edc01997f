package feedback_test

import (
	"reflect"
	"testing"

	"github.com/GTDGit/panel_api/internal/feedback"
)

func TestIsVideo(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1/a.jpg", false},
		{"https://res.cloudinary.com/demo/video/upload/v1/clip", true},
		{"https://cdn.example.com/day3.MP4", true},
		{"https://cdn.example.com/day3.mov?sig=abc", true},
		{"https://cdn.example.com/movie.png", false},
	}
	for _, tt := range tests {
		if got := feedback.IsVideo(tt.url); got != tt.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
	if feedback.Classify("x.mov") != feedback.MediaVideo {
		t.Error("expected .mov to classify as video")
	}
	if feedback.Classify("x.webp") != feedback.MediaImage {
		t.Error("expected .webp to classify as image")
	}
}

func TestDecodePhotos(t *testing.T) {
	bad := "not-json"
	empty := ""
	good := `["a","b"]`

	if got := feedback.DecodePhotos(nil); len(got) != 0 {
		t.Errorf("expected empty list for nil, got %v", got)
	}
	if got := feedback.DecodePhotos(&empty); len(got) != 0 {
		t.Errorf("expected empty list for empty string, got %v", got)
	}
	if got := feedback.DecodePhotos(&bad); len(got) != 0 {
		t.Errorf("expected empty list for malformed, got %v", got)
	}
	if got := feedback.DecodePhotos(&good); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestMergePhotos_AppendsAfterExisting(t *testing.T) {
	got := feedback.MergePhotos([]string{"old1", "", "old2"}, []string{"new1", "new2"})
	want := []string{"old1", "old2", "new1", "new2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	blob, err := feedback.EncodePhotos(got)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if back := feedback.DecodePhotos(&blob); !reflect.DeepEqual(back, want) {
		t.Errorf("expected %v after round trip, got %v", want, back)
	}

	none, _ := feedback.EncodePhotos(nil)
	if none != "[]" {
		t.Errorf("expected [], got %s", none)
	}
}
