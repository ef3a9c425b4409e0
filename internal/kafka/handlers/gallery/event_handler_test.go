package gallery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeevm/ai-gallery/internal/events"
	"github.com/avdeevm/ai-gallery/internal/model"
)

type recordingFeed struct {
	previews []events.PreviewReady
	assets   []events.AssetCreated
	analyses []events.AnalysisComplete
}

func (f *recordingFeed) OnPreviewReady(e events.PreviewReady)         { f.previews = append(f.previews, e) }
func (f *recordingFeed) OnAssetCreated(e events.AssetCreated)         { f.assets = append(f.assets, e) }
func (f *recordingFeed) OnAnalysisComplete(e events.AnalysisComplete) { f.analyses = append(f.analyses, e) }

func envelope(t *testing.T, typ events.Type, payload interface{}) kafka.Message {
	t.Helper()

	data, err := events.Wrap(typ, payload)
	require.NoError(t, err)

	return kafka.Message{Value: data}
}

func TestHandleDispatchesByType(t *testing.T) {
	feed := &recordingFeed{}
	h := NewEventHandler(feed)
	owner := uuid.New()

	msgs := []kafka.Message{
		envelope(t, events.TypePreviewReady, events.PreviewReady{
			OwnerID:        owner,
			StoredFilename: "1-a.jpg",
		}),
		envelope(t, events.TypeAssetCreated, events.AssetCreated{
			Asset: model.ImageAsset{ID: uuid.New(), OwnerID: owner, Filename: "1-a.jpg"},
		}),
		envelope(t, events.TypeAnalysisComplete, events.AnalysisComplete{
			OwnerID:        owner,
			StoredFilename: "1-a.jpg",
			Tags:           []string{"sunset"},
		}),
	}

	for _, msg := range msgs {
		require.NoError(t, h.Handle(context.Background(), msg))
	}

	require.Len(t, feed.previews, 1)
	assert.Equal(t, "1-a.jpg", feed.previews[0].StoredFilename)
	require.Len(t, feed.assets, 1)
	assert.Equal(t, owner, feed.assets[0].Asset.OwnerID)
	require.Len(t, feed.analyses, 1)
	assert.Equal(t, []string{"sunset"}, feed.analyses[0].Tags)
}

func TestHandleRejectsUnknownType(t *testing.T) {
	h := NewEventHandler(&recordingFeed{})

	err := h.Handle(context.Background(), envelope(t, "image.deleted", struct{}{}))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestHandleRejectsGarbage(t *testing.T) {
	h := NewEventHandler(&recordingFeed{})

	err := h.Handle(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
