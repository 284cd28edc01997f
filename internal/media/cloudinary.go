package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/GTDGit/panel_api/internal/config"
)

// Cloudinary uploads to a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a Cloudinary uploader from credentials.
func NewCloudinary(cfg *config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// Upload sends f to folder and returns the secure URL. Videos are stored
// as video resources so their URLs carry the /video/upload/ segment.
func (c *Cloudinary) Upload(ctx context.Context, folder string, f File) (string, error) {
	file, err := f.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	res, err := c.cld.Upload.Upload(ctx, file, uploadParams(folder, f))
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// uploadParams leaves the public id to Cloudinary so uploads sharing a
// file name never replace each other.
func uploadParams(folder string, f File) uploader.UploadParams {
	resourceType := "image"
	if f.IsVideo() {
		resourceType = "video"
	}
	return uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType,
	}
}
