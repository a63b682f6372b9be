package models

// CreateSignedUploadRequest represents the request for a direct-to-bucket upload URL.
type CreateSignedUploadRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	Folder      string `json:"folder,omitempty" validate:"omitempty,max=100"`
}

// SignedUploadResponse carries the signed PUT URL and where the object will land.
type SignedUploadResponse struct {
	UploadURL     string `json:"upload_url"`
	GCSBucket     string `json:"gcs_bucket"`
	GCSObjectPath string `json:"gcs_object_path"`
}
