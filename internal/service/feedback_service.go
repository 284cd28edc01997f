package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/panel_api/internal/feedback"
	"github.com/GTDGit/panel_api/internal/media"
	"github.com/GTDGit/panel_api/internal/metrics"
	"github.com/GTDGit/panel_api/internal/models"
	"github.com/GTDGit/panel_api/internal/repository"
)

const maxParallelUploads = 4

// FeedbackService records questionnaire responses and their media.
type FeedbackService struct {
	store    *repository.Store
	uploader media.Uploader
	folder   string
	now      func() time.Time
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(store *repository.Store, uploader media.Uploader, folder string) *FeedbackService {
	return &FeedbackService{store: store, uploader: uploader, folder: folder, now: utcNow}
}

// SaveFeedbackInput is one submitted questionnaire.
type SaveFeedbackInput struct {
	// Day 0 means "next": existing entry count + 1.
	Day     int
	Payload feedback.Payload
	// ExistingPhotos are kept ahead of new uploads. On update a nil slice
	// keeps the stored list.
	ExistingPhotos []string
	Files          []media.File
	IsCompleted    *bool
}

// UploadResult reports the outcome of one file.
type UploadResult struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// MediaItem is a stored attachment with its rendering kind.
type MediaItem struct {
	URL  string             `json:"url"`
	Kind feedback.MediaKind `json:"kind"`
}

// FeedbackView is an entry with its payload and photos decoded.
type FeedbackView struct {
	models.FeedbackEntry
	Data      feedback.Payload `json:"data"`
	Photos    []MediaItem      `json:"photos"`
	Malformed bool             `json:"malformed,omitempty"`
}

// SaveFeedbackResult is the saved entry plus per-file upload outcomes.
type SaveFeedbackResult struct {
	Entry   *FeedbackView  `json:"entry"`
	Uploads []UploadResult `json:"uploads"`
}

func newView(e *models.FeedbackEntry) *FeedbackView {
	p, ok := feedback.DecodeLenient(e.Data)
	urls := feedback.DecodePhotos(e.Photos)
	items := make([]MediaItem, 0, len(urls))
	for _, u := range urls {
		items = append(items, MediaItem{URL: u, Kind: feedback.Classify(u)})
	}
	return &FeedbackView{FeedbackEntry: *e, Data: p, Photos: items, Malformed: !ok}
}

// Create records a new entry for a test. Media is uploaded best effort: a
// failed file is reported in the result and left out of the photo list.
func (s *FeedbackService) Create(ctx context.Context, testID string, in *SaveFeedbackInput) (*SaveFeedbackResult, error) {
	if _, err := s.store.Tests.GetByID(ctx, testID); err != nil {
		return nil, notFound(err, "test %s not found", testID)
	}

	day := in.Day
	if day <= 0 {
		n, err := s.store.Feedback.CountByTest(ctx, testID)
		if err != nil {
			return nil, err
		}
		day = n + 1
	}

	data, err := feedback.Encode(in.Payload)
	if err != nil {
		return nil, err
	}

	uploads, urls := s.upload(ctx, testID, in.Files)
	photos, err := feedback.EncodePhotos(feedback.MergePhotos(in.ExistingPhotos, urls))
	if err != nil {
		return nil, err
	}

	completed := true
	if in.IsCompleted != nil {
		completed = *in.IsCompleted
	}
	now := s.now()
	e := &models.FeedbackEntry{
		ID:          uuid.NewString(),
		TestID:      testID,
		Day:         day,
		Date:        now,
		IsCompleted: completed,
		Data:        data,
		Photos:      &photos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Feedback.Create(ctx, e); err != nil {
		return nil, err
	}

	log.Info().Str("test_id", testID).Str("entry_id", e.ID).Int("day", day).Int("photos", len(urls)).Msg("Feedback saved")
	return &SaveFeedbackResult{Entry: newView(e), Uploads: uploads}, nil
}

// Get retrieves one entry.
func (s *FeedbackService) Get(ctx context.Context, id string) (*FeedbackView, error) {
	e, err := s.store.Feedback.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "feedback entry %s not found", id)
	}
	return newView(e), nil
}

// ListByTest returns the entries of a test by day.
func (s *FeedbackService) ListByTest(ctx context.Context, testID string) ([]FeedbackView, error) {
	if _, err := s.store.Tests.GetByID(ctx, testID); err != nil {
		return nil, notFound(err, "test %s not found", testID)
	}
	entries, err := s.store.Feedback.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	views := make([]FeedbackView, 0, len(entries))
	for i := range entries {
		views = append(views, *newView(&entries[i]))
	}
	return views, nil
}

// Update replaces the payload of an entry. Photos listed in
// ExistingPhotos are retained and new uploads appended after them.
func (s *FeedbackService) Update(ctx context.Context, id string, in *SaveFeedbackInput) (*SaveFeedbackResult, error) {
	e, err := s.store.Feedback.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "feedback entry %s not found", id)
	}

	data, err := feedback.Encode(in.Payload)
	if err != nil {
		return nil, err
	}
	existing := in.ExistingPhotos
	if existing == nil {
		existing = feedback.DecodePhotos(e.Photos)
	}
	uploads, urls := s.upload(ctx, e.TestID, in.Files)
	photos, err := feedback.EncodePhotos(feedback.MergePhotos(existing, urls))
	if err != nil {
		return nil, err
	}

	if in.Day > 0 {
		e.Day = in.Day
	}
	if in.IsCompleted != nil {
		e.IsCompleted = *in.IsCompleted
	}
	e.Data = data
	e.Photos = &photos
	e.UpdatedAt = s.now()

	if err := s.store.Feedback.Update(ctx, e); err != nil {
		return nil, notFound(err, "feedback entry %s not found", id)
	}
	return &SaveFeedbackResult{Entry: newView(e), Uploads: uploads}, nil
}

// Delete removes an entry.
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	if err := s.store.Feedback.Delete(ctx, id); err != nil {
		return notFound(err, "feedback entry %s not found", id)
	}
	return nil
}

// upload sends files concurrently. Results keep the input order; urls holds
// only the successful uploads, also in input order.
func (s *FeedbackService) upload(ctx context.Context, testID string, files []media.File) ([]UploadResult, []string) {
	results := make([]UploadResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	folder := s.folder + "/" + testID
	var g errgroup.Group
	g.SetLimit(maxParallelUploads)
	for i, f := range files {
		g.Go(func() error {
			results[i].Name = f.Name
			url, err := s.uploader.Upload(ctx, folder, f)
			if err != nil {
				results[i].Error = err.Error()
				metrics.MediaUploads.WithLabelValues("failed").Inc()
				log.Warn().Err(err).Str("test_id", testID).Str("file", f.Name).Msg("Media upload failed")
				return nil
			}
			results[i].URL = url
			metrics.MediaUploads.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	urls := make([]string, 0, len(files))
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return results, urls
}
