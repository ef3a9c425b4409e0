package model

import "time"

// SourceFile is one raw file selected for a batch upload.
type SourceFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProcessedFile holds what the processor derives from a source file before
// anything touches the network.
type ProcessedFile struct {
	StoredName    string // timestamp-prefixed name used for both storage paths
	Thumbnail     []byte
	ThumbnailType string
	Base64        string // original bytes, ready for the vision model
}

// PreviewItem is the transient gallery entry shown between thumbnail
// generation and the arrival of the persisted asset.
type PreviewItem struct {
	PreviewURL     string    `json:"preview_url"`
	Filename       string    `json:"filename"`
	StoredFilename string    `json:"stored_filename"`
	CreatedAt      time.Time `json:"created_at"`
}
