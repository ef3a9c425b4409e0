package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/avdeevm/ai-gallery/internal/api/respond"
	"github.com/avdeevm/ai-gallery/internal/model"
)

// service defines the interface for metadata search.
type service interface {
	Search(ctx context.Context, query string, ownerID *uuid.UUID) ([]model.ImageAsset, error)
}

// Handler provides the HTTP handler for free-text search.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// SearchRequest is the search endpoint's request body.
type SearchRequest struct {
	Query  string `json:"q"`
	UserID string `json:"userId"`
}

// Search filters the caller's images by a free-text query over description,
// tags and colors.
func (h *Handler) Search(c *ginext.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if req.Query == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("q (query) is required"))
		return
	}

	var ownerID *uuid.UUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid userId"))
			return
		}
		ownerID = &id
	}

	images, err := h.service.Search(c.Request.Context(), req.Query, ownerID)
	if err != nil {
		zlog.Logger.Err(err).Str("query", req.Query).Msg("search failed")
		respond.Fail(c, http.StatusInternalServerError, err)
		return
	}

	if images == nil {
		images = []model.ImageAsset{}
	}

	respond.OK(c, map[string]interface{}{
		"success": true,
		"images":  images,
	})
}
