package media

import (
	"context"
	"errors"
	"testing"

	"github.com/GTDGit/panel_api/internal/config"
)

func TestFile_IsVideo(t *testing.T) {
	tests := []struct {
		file File
		want bool
	}{
		{File{Name: "day1.jpg", ContentType: "image/jpeg"}, false},
		{File{Name: "clip.MOV"}, true},
		{File{Name: "blob", ContentType: "video/webm"}, true},
		{File{Name: "scan.mp4.png"}, false},
	}
	for _, tt := range tests {
		if got := tt.file.IsVideo(); got != tt.want {
			t.Errorf("IsVideo(%+v) = %v, want %v", tt.file, got, tt.want)
		}
	}
}

func TestNew_Disabled(t *testing.T) {
	up, err := New(context.Background(), &config.MediaConfig{Driver: "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := up.Upload(context.Background(), "feedback", File{Name: "a.jpg"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}

	if _, err := New(context.Background(), &config.MediaConfig{Driver: "ftp"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestS3_ObjectURL(t *testing.T) {
	s := &S3{bucket: "panel", region: "eu-west-1"}
	if got := s.objectURL("feedback/a.jpg"); got != "https://panel.s3.eu-west-1.amazonaws.com/feedback/a.jpg" {
		t.Errorf("unexpected url %s", got)
	}
	s.baseURL = "https://cdn.example.com"
	if got := s.objectURL("feedback/a.jpg"); got != "https://cdn.example.com/feedback/a.jpg" {
		t.Errorf("unexpected url %s", got)
	}
}

func TestCloudinary_UploadParamsLeavePublicIDUnset(t *testing.T) {
	// Browsers on iOS name every photo image.jpg.
	p := uploadParams("panel/tests/t1", File{Name: "image.jpg", ContentType: "image/jpeg"})
	if p.PublicID != "" {
		t.Errorf("expected no public id, got %q", p.PublicID)
	}
	if p.Folder != "panel/tests/t1" {
		t.Errorf("expected folder panel/tests/t1, got %q", p.Folder)
	}
	if p.ResourceType != "image" {
		t.Errorf("expected image resource, got %q", p.ResourceType)
	}

	if got := uploadParams("f", File{Name: "clip.mov"}).ResourceType; got != "video" {
		t.Errorf("expected video resource, got %q", got)
	}
}
