package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/GTDGit/panel_api/internal/feedback"
	"github.com/GTDGit/panel_api/internal/media"
	"github.com/GTDGit/panel_api/internal/utils"
)

type fakeUploader struct {
	mu    sync.Mutex
	calls []string
}

func (u *fakeUploader) Upload(_ context.Context, folder string, f media.File) (string, error) {
	u.mu.Lock()
	u.calls = append(u.calls, folder+"/"+f.Name)
	u.mu.Unlock()
	if strings.HasPrefix(f.Name, "bad") {
		return "", errors.New("host rejected file")
	}
	return "https://media.example.com/" + folder + "/" + f.Name, nil
}

func file(name string) media.File {
	return media.File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("data")), nil },
	}
}

func TestFeedbackCreate_DefaultsDayAndCompletion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, e.manufacturer(t, "Acme"), "Cream")
	created := e.startTest(t, e.tester(t, "Wren"), 10, e.variant(t, p, "CR-1", nil))[0]
	svc := NewFeedbackService(e.store, &fakeUploader{}, "feedback")

	for want := 1; want <= 2; want++ {
		res, err := svc.Create(ctx, created.ID, &SaveFeedbackInput{})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if res.Entry.Day != want {
			t.Errorf("expected day %d, got %d", want, res.Entry.Day)
		}
		if !res.Entry.IsCompleted {
			t.Errorf("expected entry to be completed by default")
		}
	}

	res, err := svc.Create(ctx, created.ID, &SaveFeedbackInput{Day: 7})
	if err != nil || res.Entry.Day != 7 {
		t.Fatalf("expected explicit day 7, got %v (%v)", res, err)
	}

	_, err = svc.Create(ctx, "missing", &SaveFeedbackInput{})
	assertKind(t, err, utils.ErrNotFound)
}

func TestFeedbackCreate_PartialUploadFailureKeepsSuccesses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, e.manufacturer(t, "Acme"), "Cream")
	created := e.startTest(t, e.tester(t, "Xia"), 10, e.variant(t, p, "CR-1", nil))[0]
	up := &fakeUploader{}
	svc := NewFeedbackService(e.store, up, "feedback")

	payload := feedback.Payload{EffectivenessMetrics: &feedback.EffectivenessMetrics{Hydration: 8}}
	res, err := svc.Create(ctx, created.ID, &SaveFeedbackInput{
		Payload:        payload,
		ExistingPhotos: []string{"https://media.example.com/old.jpg"},
		Files:          []media.File{file("a.jpg"), file("bad.jpg"), file("c.mp4")},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(res.Uploads) != 3 {
		t.Fatalf("expected 3 upload results, got %d", len(res.Uploads))
	}
	if res.Uploads[1].Error == "" || res.Uploads[1].URL != "" {
		t.Errorf("expected second upload to fail, got %+v", res.Uploads[1])
	}

	want := []string{
		"https://media.example.com/old.jpg",
		"https://media.example.com/feedback/" + created.ID + "/a.jpg",
		"https://media.example.com/feedback/" + created.ID + "/c.mp4",
	}
	if len(res.Entry.Photos) != len(want) {
		t.Fatalf("expected %d photos, got %d", len(want), len(res.Entry.Photos))
	}
	for i, w := range want {
		if res.Entry.Photos[i].URL != w {
			t.Errorf("photo %d: expected %s, got %s", i, w, res.Entry.Photos[i].URL)
		}
	}
	if res.Entry.Photos[2].Kind != feedback.MediaVideo {
		t.Errorf("expected .mp4 to be a video, got %s", res.Entry.Photos[2].Kind)
	}

	stored, err := svc.Get(ctx, res.Entry.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Data.EffectivenessMetrics == nil || stored.Data.EffectivenessMetrics.Hydration != 8 {
		t.Errorf("expected hydration 8 to round-trip, got %+v", stored.Data.EffectivenessMetrics)
	}
	if stored.Data.UserExperience != nil {
		t.Errorf("expected absent section to stay absent, got %+v", stored.Data.UserExperience)
	}
}

func TestFeedbackUpdate_KeepsPhotosUnlessReplaced(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, e.manufacturer(t, "Acme"), "Cream")
	created := e.startTest(t, e.tester(t, "Yael"), 10, e.variant(t, p, "CR-1", nil))[0]
	svc := NewFeedbackService(e.store, &fakeUploader{}, "feedback")

	res, err := svc.Create(ctx, created.ID, &SaveFeedbackInput{ExistingPhotos: []string{"https://x/1.jpg", "https://x/2.jpg"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := res.Entry.ID

	updated, err := svc.Update(ctx, id, &SaveFeedbackInput{Payload: feedback.Payload{AdminNotes: "follow up"}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Entry.Photos) != 2 {
		t.Errorf("expected photos kept, got %d", len(updated.Entry.Photos))
	}
	if updated.Entry.Data.AdminNotes != "follow up" {
		t.Errorf("expected admin notes, got %q", updated.Entry.Data.AdminNotes)
	}

	updated, err = svc.Update(ctx, id, &SaveFeedbackInput{ExistingPhotos: []string{"https://x/2.jpg"}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Entry.Photos) != 1 || updated.Entry.Photos[0].URL != "https://x/2.jpg" {
		t.Errorf("expected only the retained photo, got %+v", updated.Entry.Photos)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = svc.Get(ctx, id)
	assertKind(t, err, utils.ErrNotFound)
}

func TestFeedbackList_FlagsMalformedEntries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, e.manufacturer(t, "Acme"), "Cream")
	created := e.startTest(t, e.tester(t, "Zoe"), 10, e.variant(t, p, "CR-1", nil))[0]
	svc := NewFeedbackService(e.store, media.Disabled{}, "feedback")

	if _, err := svc.Create(ctx, created.ID, &SaveFeedbackInput{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	insertRawFeedback(t, e, created.ID, 2, "{not json")

	views, err := svc.ListByTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(views))
	}
	if views[0].Malformed || !views[1].Malformed {
		t.Errorf("expected only day 2 flagged malformed, got %v and %v", views[0].Malformed, views[1].Malformed)
	}
}
