// Package media uploads feedback attachments to an external media host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/GTDGit/panel_api/internal/config"
)

// ErrDisabled is returned by the no-op uploader.
var ErrDisabled = errors.New("media uploads are not configured")

// File is one attachment to upload.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// IsVideo reports whether the file should be stored as a video resource.
func (f File) IsVideo() bool {
	if strings.HasPrefix(f.ContentType, "video/") {
		return true
	}
	ext := strings.ToLower(path.Ext(f.Name))
	return ext == ".mp4" || ext == ".mov"
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder string, f File) (string, error)
}

// New returns the uploader selected by cfg.Driver.
func New(ctx context.Context, cfg *config.MediaConfig) (Uploader, error) {
	switch cfg.Driver {
	case "cloudinary":
		return NewCloudinary(&cfg.Cloudinary)
	case "s3":
		return NewS3(ctx, &cfg.S3)
	case "none", "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported media driver %q", cfg.Driver)
	}
}

// Disabled rejects every upload.
type Disabled struct{}

// Upload always fails with ErrDisabled.
func (Disabled) Upload(context.Context, string, File) (string, error) {
	return "", ErrDisabled
}
