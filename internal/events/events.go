// Package events defines the typed notifications the upload pipeline publishes
// for the display layer: a preview as soon as a thumbnail exists, the persisted
// asset once the row is inserted, and the annotation once analysis succeeds.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avdeevm/ai-gallery/internal/model"
)

// Type discriminates event payloads inside an Envelope.
type Type string

const (
	TypePreviewReady     Type = "upload.preview.ready"
	TypeAssetCreated     Type = "image.asset.created"
	TypeAnalysisComplete Type = "image.analysis.complete"
)

// Envelope is the wire format on the gallery topic.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PreviewReady is published as soon as a thumbnail exists, before any network
// upload completes. StoredFilename lets the display layer correlate the
// preview with the asset that arrives later.
type PreviewReady struct {
	OwnerID        uuid.UUID `json:"user_id"`
	PreviewURL     string    `json:"preview_url"`
	Filename       string    `json:"filename"`
	StoredFilename string    `json:"stored_filename"`
}

// AssetCreated is published after the metadata row is inserted.
type AssetCreated struct {
	Asset model.ImageAsset `json:"asset"`
}

// AnalysisComplete is published after a successful annotation.
type AnalysisComplete struct {
	OwnerID        uuid.UUID `json:"user_id"`
	StoredFilename string    `json:"stored_filename"`
	Tags           []string  `json:"tags"`
	Description    string    `json:"description"`
}

// Wrap marshals a payload into an envelope ready for the topic.
func Wrap(t Type, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	data, err := json.Marshal(Envelope{Type: t, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return data, nil
}
