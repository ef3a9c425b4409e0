package signedurl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/avdeevm/ai-gallery/internal/api/respond"
)

const defaultExpires = 3600 // seconds

// storage defines the interface for producing time-limited download URLs.
type storage interface {
	SignedURL(ctx context.Context, bucket, objectPath string, expires time.Duration) (string, error)
}

// Handler provides the HTTP handler for signing storage URLs.
type Handler struct {
	storage storage
}

// NewHandler creates a new Handler with the given storage backend.
func NewHandler(s storage) *Handler {
	return &Handler{storage: s}
}

// SignRequest is the signed-url endpoint's request body.
type SignRequest struct {
	Bucket  string `json:"bucket"`
	Path    string `json:"path"`
	Expires int    `json:"expires"`
}

// Sign produces a time-limited download URL for an object. Unlike the rest of
// the API this endpoint answers errors with a bare {"error": ...} body.
func (h *Handler) Sign(c *ginext.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.JSON(c, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Bucket == "" || req.Path == "" {
		respond.JSON(c, http.StatusBadRequest, map[string]string{"error": "Missing bucket or path"})
		return
	}

	if req.Expires <= 0 {
		req.Expires = defaultExpires
	}

	url, err := h.storage.SignedURL(c.Request.Context(), req.Bucket, req.Path, time.Duration(req.Expires)*time.Second)
	if err != nil {
		zlog.Logger.Err(err).Str("bucket", req.Bucket).Str("path", req.Path).Msg("failed to sign url")
		respond.JSON(c, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to sign url: %v", err)})
		return
	}

	respond.JSON(c, http.StatusOK, map[string]string{"url": url})
}
