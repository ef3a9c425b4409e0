package upload

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avdeevm/ai-gallery/internal/model"
	"github.com/avdeevm/ai-gallery/internal/storage/file"
)

// Step identifies which of the three ordered persistence steps failed.
type Step string

const (
	StepOriginal  Step = "original"
	StepThumbnail Step = "thumbnail"
	StepRecord    Step = "record"
)

// StepError reports a failed upload step. The steps are not transactional:
// blobs written before a later failure stay where they are.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("upload step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// fileStorage defines the object storage operations the uploader needs.
type fileStorage interface {
	SaveOriginal(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	SaveThumbnail(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// assetRepo persists the metadata row referencing the uploaded blobs.
type assetRepo interface {
	InsertAsset(ctx context.Context, asset model.ImageAsset) (model.ImageAsset, error)
}

// Uploader pushes original and thumbnail bytes to object storage and records
// the asset row, in that order.
type Uploader struct {
	storage fileStorage
	repo    assetRepo
}

// NewUploader creates an Uploader over the given storage and repository.
func NewUploader(storage fileStorage, repo assetRepo) *Uploader {
	return &Uploader{storage: storage, repo: repo}
}

// Progress checkpoints within a single file, matching the processor's scale.
const (
	progressOriginalSaved  = 0.6
	progressThumbnailSaved = 0.8
	progressRecordSaved    = 0.9
)

// Upload writes the original, then the thumbnail, then inserts the row. On
// failure it returns a *StepError naming the failed step; anything already
// written is left behind.
func (u *Uploader) Upload(ctx context.Context, ownerID uuid.UUID, src model.SourceFile, processed model.ProcessedFile, onProgress func(float64)) (model.ImageAsset, error) {
	objectPath := file.ObjectPath(ownerID, processed.StoredName)

	originalPath, err := u.storage.SaveOriginal(ctx, objectPath, src.Data, src.ContentType)
	if err != nil {
		return model.ImageAsset{}, &StepError{Step: StepOriginal, Err: err}
	}
	if onProgress != nil {
		onProgress(progressOriginalSaved)
	}

	thumbnailPath, err := u.storage.SaveThumbnail(ctx, objectPath, processed.Thumbnail, processed.ThumbnailType)
	if err != nil {
		return model.ImageAsset{}, &StepError{Step: StepThumbnail, Err: err}
	}
	if onProgress != nil {
		onProgress(progressThumbnailSaved)
	}

	asset, err := u.repo.InsertAsset(ctx, model.ImageAsset{
		OwnerID:       ownerID,
		Filename:      processed.StoredName,
		OriginalPath:  originalPath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		return model.ImageAsset{}, &StepError{Step: StepRecord, Err: err}
	}
	if onProgress != nil {
		onProgress(progressRecordSaved)
	}

	return asset, nil
}
