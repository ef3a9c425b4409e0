package gallery

import (
	"sync"

	"github.com/google/uuid"
)

// previewEntry holds the in-memory thumbnail bytes backing one preview URL.
type previewEntry struct {
	owner       uuid.UUID
	data        []byte
	contentType string
	released    bool
}

// PreviewStore keeps preview thumbnails in memory between generation and the
// arrival of the persisted asset, serving them under /api/previews/. Each
// entry's bytes are released exactly once: when the asset is observed, or when
// the owning session is cleared.
type PreviewStore struct {
	mu      sync.Mutex
	entries map[string]*previewEntry // keyed by stored filename
}

// NewPreviewStore creates an empty PreviewStore.
func NewPreviewStore() *PreviewStore {
	return &PreviewStore{entries: make(map[string]*previewEntry)}
}

// Add registers preview bytes under the stored filename and returns the local
// URL the display layer can fetch them from.
func (s *PreviewStore) Add(owner uuid.UUID, storedName string, data []byte, contentType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[storedName] = &previewEntry{
		owner:       owner,
		data:        data,
		contentType: contentType,
	}

	return "/api/previews/" + storedName
}

// Get returns the preview bytes for a stored filename, if still held.
func (s *PreviewStore) Get(storedName string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[storedName]
	if !ok || e.released {
		return nil, "", false
	}

	return e.data, e.contentType, true
}

// Release drops the bytes for a stored filename. Releasing an unknown or
// already-released entry is a no-op, so the underlying resource is freed
// exactly once.
func (s *PreviewStore) Release(storedName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[storedName]
	if !ok || e.released {
		return false
	}

	e.released = true
	e.data = nil
	delete(s.entries, storedName)

	return true
}

// ClearOwner releases every preview belonging to an owner, the session-end
// cleanup path. Returns how many entries were released.
func (s *PreviewStore) ClearOwner(owner uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for name, e := range s.entries {
		if e.owner != owner || e.released {
			continue
		}
		e.released = true
		e.data = nil
		delete(s.entries, name)
		released++
	}

	return released
}
