package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/feedback"
	"github.com/GTDGit/panel_api/internal/media"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

const maxFeedbackMemory = 32 << 20

// FeedbackHandler handles feedback entry endpoints. Writes accept either a
// multipart questionnaire form with "photos" files or a JSON body.
type FeedbackHandler struct {
	svc *service.FeedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type feedbackBody struct {
	Day            int              `json:"day"`
	IsCompleted    *bool            `json:"isCompleted"`
	Data           feedback.Payload `json:"data"`
	ExistingPhotos []string         `json:"existingPhotos"`
}

// ListByTest handles GET /v1/admin/tests/:id/feedback
func (h *FeedbackHandler) ListByTest(c *gin.Context) {
	list, err := h.svc.ListByTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to list feedback")
		return
	}
	utils.Success(c, 200, "Feedback retrieved", list)
}

// Create handles POST /v1/admin/tests/:id/feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.svc.Create(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		utils.ServiceError(c, err, "Failed to save feedback")
		return
	}
	utils.Success(c, 201, "Feedback saved", res)
}

// Get handles GET /v1/admin/feedback/:id
func (h *FeedbackHandler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get feedback")
		return
	}
	utils.Success(c, 200, "Feedback retrieved", v)
}

// Update handles PUT /v1/admin/feedback/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		utils.ServiceError(c, err, "Failed to update feedback")
		return
	}
	utils.Success(c, 200, "Feedback updated", res)
}

// Delete handles DELETE /v1/admin/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete feedback")
		return
	}
	utils.Success(c, 200, "Feedback deleted", nil)
}

// bind reads the request into a SaveFeedbackInput, writing a 400 on failure.
func (h *FeedbackHandler) bind(c *gin.Context) (*service.SaveFeedbackInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err := fromMultipart(c)
		if err != nil {
			utils.Error(c, 400, "INVALID_REQUEST", "Invalid feedback form")
			return nil, false
		}
		return in, true
	}

	var body feedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return nil, false
	}
	return &service.SaveFeedbackInput{
		Day:            body.Day,
		Payload:        body.Data,
		ExistingPhotos: body.ExistingPhotos,
		IsCompleted:    body.IsCompleted,
	}, true
}

func fromMultipart(c *gin.Context) (*service.SaveFeedbackInput, error) {
	if err := c.Request.ParseMultipartForm(maxFeedbackMemory); err != nil {
		return nil, err
	}
	form := c.Request.MultipartForm
	values := url.Values(form.Value)

	in := &service.SaveFeedbackInput{Payload: feedback.FromForm(values)}
	if v := values.Get("day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		in.Day = day
	}
	if v := values.Get("is_completed"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		in.IsCompleted = &done
	}

	for _, key := range []string{"existingPhotos", "photos_json"} {
		if _, ok := form.Value[key]; !ok {
			continue
		}
		photos := []string{}
		if raw := strings.TrimSpace(values.Get(key)); raw != "" {
			if err := json.Unmarshal([]byte(raw), &photos); err != nil {
				return nil, err
			}
		}
		in.ExistingPhotos = append(in.ExistingPhotos, photos...)
		if in.ExistingPhotos == nil {
			in.ExistingPhotos = []string{}
		}
	}

	for _, fh := range form.File["photos"] {
		if fh.Size == 0 {
			continue
		}
		in.Files = append(in.Files, uploadFile(fh))
	}
	return in, nil
}

func uploadFile(fh *multipart.FileHeader) media.File {
	return media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
