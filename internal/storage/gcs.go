// Package storage issues signed URLs for direct-to-bucket media uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/demoday/pitchhub/internal/models"
)

// ErrInvalidFilename is returned when the requested filename is empty after sanitizing.
var ErrInvalidFilename = errors.New("invalid upload filename")

const defaultUploadFolder = "pitches"

// Uploader creates V4 signed PUT URLs so clients upload pitch recordings
// straight to the bucket without routing media bytes through the API.
type Uploader struct {
	client *gcs.Client
	bucket string
	expiry time.Duration
}

// NewUploader creates an Uploader for the given bucket. The client must be
// authenticated with credentials allowed to sign URLs (e.g. a service account).
func NewUploader(client *gcs.Client, bucket string, expiry time.Duration) *Uploader {
	return &Uploader{client: client, bucket: bucket, expiry: expiry}
}

// SignedUploadURL returns a signed PUT URL for a new object. The object path is
// prefixed with the folder and a timestamp so repeated uploads of the same
// filename never collide.
func (u *Uploader) SignedUploadURL(_ context.Context, req *models.CreateSignedUploadRequest) (*models.SignedUploadResponse, error) {
	filename := path.Base(strings.TrimSpace(req.Filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, ErrInvalidFilename
	}

	folder := strings.Trim(req.Folder, "/")
	if folder == "" {
		folder = defaultUploadFolder
	}

	objectPath := fmt.Sprintf("%s/%d-%s", folder, time.Now().Unix(), filename)

	url, err := u.client.Bucket(u.bucket).SignedURL(objectPath, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     time.Now().Add(u.expiry),
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("sign upload url: %w", err)
	}

	return &models.SignedUploadResponse{
		UploadURL:     url,
		GCSBucket:     u.bucket,
		GCSObjectPath: objectPath,
	}, nil
}
