package feedback

import (
	"encoding/json"
	"strings"
)

// MediaKind classifies an uploaded attachment for rendering.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Classify decides image versus video from the URL alone.
func Classify(rawURL string) MediaKind {
	if IsVideo(rawURL) {
		return MediaVideo
	}
	return MediaImage
}

// IsVideo reports whether the URL points at a video: a .mp4/.mov suffix or
// a media host "video/upload" path segment.
func IsVideo(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".mp4") ||
		strings.HasSuffix(lower, ".mov") ||
		strings.Contains(lower, "/video/upload/")
}

// DecodePhotos parses a stored photo list. Nil, empty or malformed input
// yields an empty list.
func DecodePhotos(data *string) []string {
	if data == nil || strings.TrimSpace(*data) == "" {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal([]byte(*data), &urls); err != nil || urls == nil {
		return []string{}
	}
	return urls
}

// EncodePhotos serializes a photo list. An empty list is stored as "[]".
func EncodePhotos(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MergePhotos keeps existing URLs in order and appends the new ones after
// them. Blank entries are dropped.
func MergePhotos(existing, added []string) []string {
	out := make([]string, 0, len(existing)+len(added))
	for _, u := range existing {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	for _, u := range added {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	return out
}
