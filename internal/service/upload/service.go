// Package upload drives batches of files through the processing, storage and
// analysis pipeline, one file at a time.
package upload

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/avdeevm/ai-gallery/internal/events"
	"github.com/avdeevm/ai-gallery/internal/model"
)

// ErrBatchInFlight is returned when Run is invoked while a previous batch is
// still being processed. The pipeline is deliberately not re-entrant.
var ErrBatchInFlight = errors.New("an upload batch is already in flight")

// State names the orchestrator's externally visible condition.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status is the progress view exposed to the UI.
type Status struct {
	State    State `json:"state"`
	Progress int   `json:"progress"`
}

// FileError records one file's failure without aborting the batch.
type FileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult summarizes a finished batch.
type BatchResult struct {
	Uploaded []model.ImageAsset `json:"uploaded"`
	Failed   []FileError        `json:"failed"`
}

// processor derives thumbnail, base64 payload and stored name from a file.
type processor interface {
	Process(f model.SourceFile, onProgress func(float64)) (model.ProcessedFile, error)
}

// uploader persists blobs and the asset row.
type uploader interface {
	Upload(ctx context.Context, ownerID uuid.UUID, src model.SourceFile, processed model.ProcessedFile, onProgress func(float64)) (model.ImageAsset, error)
}

// analyzer annotates a persisted asset; failure is expected to be non-fatal.
type analyzer interface {
	AnalyzeAndPersist(ctx context.Context, imageBase64 string, imageID uuid.UUID) (model.AnalysisOutcome, error)
}

// previewStore holds thumbnail bytes for immediate display.
type previewStore interface {
	Add(owner uuid.UUID, storedName string, data []byte, contentType string) string
}

// paletteWriter stores the rendered palette strip next to the thumbnails.
type paletteWriter interface {
	SaveThumbnail(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// notifier publishes the pipeline's two integration events plus the
// persisted-asset signal the gallery feed consumes.
type notifier interface {
	PreviewReady(ctx context.Context, e events.PreviewReady) error
	AssetCreated(ctx context.Context, e events.AssetCreated) error
	AnalysisComplete(ctx context.Context, e events.AnalysisComplete) error
}

// paletteStripFunc renders dominant colors into an image, or reports that no
// strip is warranted.
type paletteStripFunc func(colors []string) ([]byte, bool, error)

// Service is the upload orchestrator. Files within a batch are processed
// strictly sequentially; one file's failure never aborts the batch.
type Service struct {
	processor    processor
	uploader     uploader
	analyzer     analyzer
	previews     previewStore
	palettes     paletteWriter
	notifier     notifier
	paletteStrip paletteStripFunc
	resetDelay   time.Duration

	mu       sync.Mutex
	state    State
	progress int
}

// NewService creates the orchestrator.
func NewService(
	p processor,
	u uploader,
	a analyzer,
	previews previewStore,
	palettes paletteWriter,
	n notifier,
	paletteStrip paletteStripFunc,
	resetDelay time.Duration,
) *Service {
	return &Service{
		processor:    p,
		uploader:     u,
		analyzer:     a,
		previews:     previews,
		palettes:     palettes,
		notifier:     n,
		paletteStrip: paletteStrip,
		resetDelay:   resetDelay,
		state:        StateIdle,
	}
}

// Status reports the current batch state and aggregate progress.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{State: s.state, Progress: s.progress}
}

func (s *Service) setProgress(p int) {
	if p > 100 {
		p = 100
	}

	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// Run drives every file of the batch through process, upload and analyze.
// Per-file errors are collected and logged; annotation failures are demoted
// to Unannotated and never surfaced. Progress is forced to 100 at the end and
// the service returns to idle after a short delay so the UI can show
// completion.
func (s *Service) Run(ctx context.Context, ownerID uuid.UUID, files []model.SourceFile) (BatchResult, error) {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return BatchResult{}, ErrBatchInFlight
	}
	s.state = StateRunning
	s.progress = 0
	s.mu.Unlock()

	var result BatchResult

	total := len(files)
	if total == 0 {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return result, nil
	}

	for i, f := range files {
		// The file's progress contribution occupies [i*100/N, (i+1)*100/N).
		base := i * 100 / total
		slice := 100 / total

		fileProgress := func(frac float64) {
			s.setProgress(base + int(float64(slice)*frac))
		}

		asset, ferr := s.runFile(ctx, ownerID, f, fileProgress)
		if !ferr.isZero() {
			result.Failed = append(result.Failed, ferr)
			// A failed file still advances to "mostly done" within its slice
			// rather than stopping at the failure point.
			s.setProgress(base + slice*9/10)
			continue
		}

		result.Uploaded = append(result.Uploaded, asset)
		s.setProgress(base + slice)
	}

	s.setProgress(100)

	time.AfterFunc(s.resetDelay, func() {
		s.mu.Lock()
		s.state = StateIdle
		s.progress = 0
		s.mu.Unlock()
	})

	return result, nil
}

func (fe FileError) isZero() bool { return fe.Filename == "" && fe.Error == "" }

// runFile runs one file's pipeline. A non-zero FileError means the file
// failed; annotation failures do not count as file failures.
func (s *Service) runFile(ctx context.Context, ownerID uuid.UUID, f model.SourceFile, onProgress func(float64)) (model.ImageAsset, FileError) {
	processed, err := s.processor.Process(f, onProgress)
	if err != nil {
		zlog.Logger.Err(err).Str("filename", f.Name).Msg("failed to process file")
		return model.ImageAsset{}, FileError{Filename: f.Name, Error: err.Error()}
	}

	// Preview goes out as soon as the thumbnail exists, before any network
	// upload completes.
	previewURL := s.previews.Add(ownerID, processed.StoredName, processed.Thumbnail, processed.ThumbnailType)
	if err := s.notifier.PreviewReady(ctx, events.PreviewReady{
		OwnerID:        ownerID,
		PreviewURL:     previewURL,
		Filename:       f.Name,
		StoredFilename: processed.StoredName,
	}); err != nil {
		zlog.Logger.Err(err).Str("filename", f.Name).Msg("failed to publish preview event")
	}

	asset, err := s.uploader.Upload(ctx, ownerID, f, processed, onProgress)
	if err != nil {
		zlog.Logger.Err(err).Str("filename", f.Name).Msg("failed to upload file")
		return model.ImageAsset{}, FileError{Filename: f.Name, Error: err.Error()}
	}

	if err := s.notifier.AssetCreated(ctx, events.AssetCreated{Asset: asset}); err != nil {
		zlog.Logger.Err(err).Str("filename", asset.Filename).Msg("failed to publish asset event")
	}

	annotation := s.annotate(ctx, processed.Base64, asset)
	if !annotation.Annotated {
		zlog.Logger.Warn().
			Str("filename", asset.Filename).
			Str("reason", annotation.Reason).
			Msg("asset left unannotated")
	}

	return asset, FileError{}
}

// annotate runs the best-effort analysis step. Failure is demoted to an
// Unannotated result: the asset exists without annotation and can be
// re-analyzed later.
func (s *Service) annotate(ctx context.Context, imageBase64 string, asset model.ImageAsset) model.Annotation {
	outcome, err := s.analyzer.AnalyzeAndPersist(ctx, imageBase64, asset.ID)
	if err != nil {
		return model.Unannotated(err.Error())
	}

	if err := s.notifier.AnalysisComplete(ctx, events.AnalysisComplete{
		OwnerID:        asset.OwnerID,
		StoredFilename: asset.Filename,
		Tags:           outcome.Analysis.Tags,
		Description:    outcome.Analysis.Description,
	}); err != nil {
		zlog.Logger.Err(err).Str("filename", asset.Filename).Msg("failed to publish analysis event")
	}

	s.storePalette(ctx, asset, outcome.Analysis.Colors)

	return model.Annotated(outcome)
}

// storePalette renders and stores the dominant-color strip, best effort.
func (s *Service) storePalette(ctx context.Context, asset model.ImageAsset, colors []string) {
	strip, ok, err := s.paletteStrip(colors)
	if err != nil {
		zlog.Logger.Err(err).Str("filename", asset.Filename).Msg("failed to render palette strip")
		return
	}
	if !ok {
		return
	}

	palettePath := path.Join(asset.OwnerID.String(), "palettes", asset.Filename+".png")
	if _, err := s.palettes.SaveThumbnail(ctx, palettePath, strip, "image/png"); err != nil {
		zlog.Logger.Err(err).Str("filename", asset.Filename).Msg("failed to store palette strip")
	}
}
