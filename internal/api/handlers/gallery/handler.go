package gallery

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/avdeevm/ai-gallery/internal/api/respond"
	gallerysvc "github.com/avdeevm/ai-gallery/internal/gallery"
)

// feed defines the interface for reading and clearing gallery view state.
type feed interface {
	Snapshot(owner uuid.UUID) gallerysvc.Snapshot
	ClearOwner(owner uuid.UUID)
}

// previews defines the interface for serving transient preview bytes.
type previews interface {
	Get(storedName string) ([]byte, string, bool)
}

// Handler provides HTTP handlers for the display layer.
type Handler struct {
	feed     feed
	previews previews
}

// NewHandler creates a new Handler over the feed and preview store.
func NewHandler(f feed, p previews) *Handler {
	return &Handler{feed: f, previews: p}
}

// Snapshot returns the caller's current gallery view: persisted assets,
// transient previews and annotations.
func (h *Handler) Snapshot(c *ginext.Context) {
	owner, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}

	respond.OK(c, h.feed.Snapshot(owner))
}

// Preview serves the in-memory thumbnail bytes backing a preview URL.
func (h *Handler) Preview(c *ginext.Context) {
	name := c.Param("name")
	if name == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("missing preview name"))
		return
	}

	data, contentType, ok := h.previews.Get(name)
	if !ok {
		respond.Fail(c, http.StatusNotFound, fmt.Errorf("preview not found"))
		return
	}

	// Previews are transient; never let the browser cache them.
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

	respond.Image(c, http.StatusOK, contentType, int64(len(data)), bytes.NewReader(data))
}

// ClearRequest is the session-end cleanup request body.
type ClearRequest struct {
	UserID string `json:"userId"`
}

// Clear drops the caller's view state and releases any previews still held.
func (h *Handler) Clear(c *ginext.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	owner, err := uuid.Parse(req.UserID)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("userId is required"))
		return
	}

	h.feed.ClearOwner(owner)
	zlog.Logger.Info().Str("user_id", owner.String()).Msg("gallery session cleared")

	respond.OK(c, map[string]interface{}{"success": true})
}
