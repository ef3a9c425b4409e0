package model

import (
	"time"

	"github.com/google/uuid"
)

// ImageAsset represents a persisted image record with its storage paths
// and the optional AI annotation added by the analysis step.
type ImageAsset struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"user_id"`
	Filename       string     `json:"filename"`
	OriginalPath   string     `json:"original_path"`
	ThumbnailPath  string     `json:"thumbnail_path"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	Description    string     `json:"description,omitempty"`
	Tags           StringList `json:"tags,omitempty"`
	DominantColors StringList `json:"dominant_colors,omitempty"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`

	// PublicURL is resolved per request from the thumbnail path; it is never stored.
	PublicURL string `json:"public_url,omitempty"`
}

// ImageMetadata is the searchable annotation record, kept one-per-asset
// via an upsert keyed on ImageID.
type ImageMetadata struct {
	ImageID            uuid.UUID  `json:"image_id"`
	UserID             uuid.UUID  `json:"user_id"`
	Description        string     `json:"description"`
	Tags               StringList `json:"tags"`
	Colors             StringList `json:"colors"`
	AIProcessingStatus string     `json:"ai_processing_status"`
	CreatedAt          time.Time  `json:"created_at"`
}
