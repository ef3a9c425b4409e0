package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	analysisclient "github.com/avdeevm/ai-gallery/internal/analysis"
	"github.com/avdeevm/ai-gallery/internal/api/respond"
	"github.com/avdeevm/ai-gallery/internal/model"
	"github.com/avdeevm/ai-gallery/internal/repository/image"
)

// client defines the interface for analyzing and persisting annotations.
type client interface {
	AnalyzeAndPersist(ctx context.Context, imageBase64 string, imageID uuid.UUID) (model.AnalysisOutcome, error)
}

// Handler provides the HTTP handler for on-demand (re-)analysis.
type Handler struct {
	client client
}

// NewHandler creates a new Handler with the given analysis client.
func NewHandler(c client) *Handler {
	return &Handler{client: c}
}

// AnalyzeRequest is the analyze endpoint's request body.
type AnalyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ImageID     string `json:"imageId"`
}

// Analyze runs the vision model over the supplied image and persists the
// annotation for the referenced asset.
func (h *Handler) Analyze(c *ginext.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if req.ImageBase64 == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("imageBase64 is required"))
		return
	}

	imageID, err := uuid.Parse(req.ImageID)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("imageId is required"))
		return
	}

	outcome, err := h.client.AnalyzeAndPersist(c.Request.Context(), req.ImageBase64, imageID)
	if err != nil {
		var parseErr *analysisclient.ParseError
		if errors.As(err, &parseErr) {
			// Keep the raw model payload in the logs, not in the response.
			zlog.Logger.Error().Str("raw", parseErr.Raw).Msg("unparsable model response")
		}
		if errors.Is(err, image.ErrAssetNotFound) {
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("image not found"))
			return
		}

		zlog.Logger.Err(err).Str("image_id", imageID.String()).Msg("failed to analyze image")
		respond.Fail(c, http.StatusInternalServerError, err)
		return
	}

	respond.OK(c, map[string]interface{}{
		"success":  true,
		"analysis": outcome.Analysis,
		"data":     outcome.Metadata,
	})
}
