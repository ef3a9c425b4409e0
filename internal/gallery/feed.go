// Package gallery holds the display-layer view state: transient previews and
// the per-owner feed the UI polls. The feed is mutated only by the gallery
// event handler; HTTP handlers just read snapshots.
package gallery

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avdeevm/ai-gallery/internal/events"
	"github.com/avdeevm/ai-gallery/internal/model"
)

// AnnotationNote is the analysis-complete payload keyed by stored filename.
type AnnotationNote struct {
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// Snapshot is what one owner's gallery view looks like right now.
type Snapshot struct {
	Assets      []model.ImageAsset        `json:"assets"`
	Previews    []model.PreviewItem       `json:"previews"`
	Annotations map[string]AnnotationNote `json:"annotations"`
}

type ownerState struct {
	assets      []model.ImageAsset
	previews    []model.PreviewItem
	annotations map[string]AnnotationNote
}

// Feed maintains per-owner gallery state from the event stream.
type Feed struct {
	mu       sync.Mutex
	owners   map[uuid.UUID]*ownerState
	previews *PreviewStore
}

// NewFeed creates a Feed that releases preview bytes from the given store
// once the corresponding asset arrives.
func NewFeed(previews *PreviewStore) *Feed {
	return &Feed{
		owners:   make(map[uuid.UUID]*ownerState),
		previews: previews,
	}
}

func (f *Feed) state(owner uuid.UUID) *ownerState {
	st, ok := f.owners[owner]
	if !ok {
		st = &ownerState{annotations: make(map[string]AnnotationNote)}
		f.owners[owner] = st
	}

	return st
}

// OnPreviewReady records a transient preview for the owner.
func (f *Feed) OnPreviewReady(e events.PreviewReady) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.state(e.OwnerID)
	st.previews = append(st.previews, model.PreviewItem{
		PreviewURL:     e.PreviewURL,
		Filename:       e.Filename,
		StoredFilename: e.StoredFilename,
		CreatedAt:      time.Now(),
	})
}

// OnAssetCreated prepends the persisted asset and drops the preview that was
// standing in for it, releasing the preview bytes.
func (f *Feed) OnAssetCreated(e events.AssetCreated) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.state(e.Asset.OwnerID)
	st.assets = append([]model.ImageAsset{e.Asset}, st.assets...)

	for i, p := range st.previews {
		if p.StoredFilename != e.Asset.Filename {
			continue
		}
		st.previews = append(st.previews[:i], st.previews[i+1:]...)
		f.previews.Release(p.StoredFilename)
		break
	}
}

// OnAnalysisComplete records the annotation keyed by stored filename and
// folds it into the matching asset if it is already in the feed.
func (f *Feed) OnAnalysisComplete(e events.AnalysisComplete) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.state(e.OwnerID)
	st.annotations[e.StoredFilename] = AnnotationNote{
		Tags:        e.Tags,
		Description: e.Description,
	}

	for i := range st.assets {
		if st.assets[i].Filename == e.StoredFilename {
			st.assets[i].Description = e.Description
			st.assets[i].Tags = model.StringList(e.Tags)
			break
		}
	}
}

// Snapshot returns a copy of the owner's current view state.
func (f *Feed) Snapshot(owner uuid.UUID) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.owners[owner]
	if !ok {
		return Snapshot{Annotations: map[string]AnnotationNote{}}
	}

	snap := Snapshot{
		Assets:      append([]model.ImageAsset(nil), st.assets...),
		Previews:    append([]model.PreviewItem(nil), st.previews...),
		Annotations: make(map[string]AnnotationNote, len(st.annotations)),
	}
	for k, v := range st.annotations {
		snap.Annotations[k] = v
	}

	return snap
}

// ClearOwner drops the owner's view state and releases any previews still
// held for them.
func (f *Feed) ClearOwner(owner uuid.UUID) {
	f.mu.Lock()
	delete(f.owners, owner)
	f.mu.Unlock()

	f.previews.ClearOwner(owner)
}
