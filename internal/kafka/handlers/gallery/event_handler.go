package gallery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/avdeevm/ai-gallery/internal/events"
)

// feed defines the interface for applying gallery events to the view state.
type feed interface {
	OnPreviewReady(e events.PreviewReady)
	OnAssetCreated(e events.AssetCreated)
	OnAnalysisComplete(e events.AnalysisComplete)
}

// EventHandler decodes gallery event envelopes and drives the feed.
type EventHandler struct {
	feed feed
}

// NewEventHandler creates a new handler for the given feed.
func NewEventHandler(f feed) *EventHandler {
	return &EventHandler{feed: f}
}

// Handle processes one Kafka message carrying a gallery event envelope.
func (h *EventHandler) Handle(_ context.Context, msg kafka.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case events.TypePreviewReady:
		var e events.PreviewReady
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return fmt.Errorf("unmarshal preview event: %w", err)
		}
		h.feed.OnPreviewReady(e)
	case events.TypeAssetCreated:
		var e events.AssetCreated
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return fmt.Errorf("unmarshal asset event: %w", err)
		}
		h.feed.OnAssetCreated(e)
	case events.TypeAnalysisComplete:
		var e events.AnalysisComplete
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return fmt.Errorf("unmarshal analysis event: %w", err)
		}
		h.feed.OnAnalysisComplete(e)
	default:
		return fmt.Errorf("unknown event type: %s", env.Type)
	}

	return nil
}
