package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/avdeevm/ai-gallery/internal/api/respond"
	"github.com/avdeevm/ai-gallery/internal/model"
	uploadsvc "github.com/avdeevm/ai-gallery/internal/service/upload"
)

// service defines the interface for batch upload operations.
type service interface {
	Run(ctx context.Context, ownerID uuid.UUID, files []model.SourceFile) (uploadsvc.BatchResult, error)
	Status() uploadsvc.Status
}

// Handler provides HTTP handlers for the upload pipeline.
type Handler struct {
	service     service
	maxFileSize int64
}

// NewHandler creates a new Handler with the given service and per-file size cap.
func NewHandler(s service, maxFileSize int64) *Handler {
	return &Handler{service: s, maxFileSize: maxFileSize}
}

// Upload handles the HTTP request for uploading a batch of images.
// It reads the multipart form, drives each file through the pipeline and
// responds with the uploaded assets and per-file failures.
func (h *Handler) Upload(c *ginext.Context) {
	// Parse the multipart form with a 10MB max memory limit.
	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("parse multipart form failed: %v", err))
		return
	}

	ownerID, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		zlog.Logger.Warn().Msg("missing or invalid user_id")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}

	form := c.Request.MultipartForm
	if form == nil || len(form.File["images"]) == 0 {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("at least one images file is required"))
		return
	}

	var files []model.SourceFile
	for _, header := range form.File["images"] {
		if header.Size > h.maxFileSize {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("file %s exceeds the size limit", header.Filename))
			return
		}

		f, err := header.Open()
		if err != nil {
			zlog.Logger.Err(err).Str("filename", header.Filename).Msg("failed to open uploaded file")
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read file %s", header.Filename))
			return
		}

		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read file %s", header.Filename))
			return
		}

		files = append(files, model.SourceFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.service.Run(c.Request.Context(), ownerID, files)
	if err != nil {
		if errors.Is(err, uploadsvc.ErrBatchInFlight) {
			respond.Fail(c, http.StatusConflict, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to run upload batch")
		respond.Fail(c, http.StatusInternalServerError, err)
		return
	}

	respond.OK(c, map[string]interface{}{
		"success":  true,
		"uploaded": result.Uploaded,
		"failed":   result.Failed,
	})
}

// Status reports the current batch state and aggregate progress percentage.
func (h *Handler) Status(c *ginext.Context) {
	respond.OK(c, h.service.Status())
}
