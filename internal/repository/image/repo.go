package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/avdeevm/ai-gallery/internal/model"
)

var ErrAssetNotFound = errors.New("image not found")

// Repository provides CRUD operations for image assets and their
// searchable metadata. Writes are pinned to the master node; reads may go
// through the wrapper's master/slave balancing.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// InsertAsset inserts a new image row and returns the persisted asset.
func (r *Repository) InsertAsset(ctx context.Context, asset model.ImageAsset) (model.ImageAsset, error) {
	query := `
		INSERT INTO images (user_id, filename, original_path, thumbnail_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at
   `

	err := r.db.Master.QueryRowContext(
		ctx, query, asset.OwnerID, asset.Filename, asset.OriginalPath, asset.ThumbnailPath,
	).Scan(&asset.ID, &asset.UploadedAt)
	if err != nil {
		return model.ImageAsset{}, fmt.Errorf("insert: failed to save image: %w", err)
	}

	return asset, nil
}

// GetAsset retrieves an image row by ID.
func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (model.ImageAsset, error) {
	query := `
		SELECT user_id, filename, original_path, thumbnail_path, uploaded_at,
		       COALESCE(description, ''), tags, dominant_colors, analyzed_at
		FROM images
		WHERE id = $1
    `

	var asset model.ImageAsset
	asset.ID = id

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&asset.OwnerID, &asset.Filename, &asset.OriginalPath, &asset.ThumbnailPath,
		&asset.UploadedAt, &asset.Description, &asset.Tags, &asset.DominantColors, &asset.AnalyzedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ImageAsset{}, ErrAssetNotFound
		}

		return model.ImageAsset{}, fmt.Errorf("get: failed to get image: %w", err)
	}

	return asset, nil
}

// GetAssetsByIDs retrieves the image rows for the given ID set, optionally
// scoped to one owner. Rows come back in database order; callers that care
// about ordering re-sort by their own criteria.
func (r *Repository) GetAssetsByIDs(ctx context.Context, ids []uuid.UUID, ownerID *uuid.UUID) ([]model.ImageAsset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, filename, original_path, thumbnail_path, uploaded_at,
		       COALESCE(description, ''), tags, dominant_colors, analyzed_at
		FROM images
		WHERE id = ANY($1)
    `

	args := []interface{}{pq.Array(ids)}
	if ownerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *ownerID)
	}

	rows, err := r.db.Master.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get by ids: failed to query images: %w", err)
	}
	defer rows.Close()

	var assets []model.ImageAsset
	for rows.Next() {
		var asset model.ImageAsset
		if err := rows.Scan(
			&asset.ID, &asset.OwnerID, &asset.Filename, &asset.OriginalPath, &asset.ThumbnailPath,
			&asset.UploadedAt, &asset.Description, &asset.Tags, &asset.DominantColors, &asset.AnalyzedAt,
		); err != nil {
			return nil, fmt.Errorf("get by ids: failed to scan image: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get by ids: rows error: %w", err)
	}

	return assets, nil
}

// ApplyAnalysis updates an image row with the annotation produced by the
// vision model and returns the updated asset.
func (r *Repository) ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis model.Analysis, at time.Time) (model.ImageAsset, error) {
	query := `
		UPDATE images
		SET description = $1, tags = $2, dominant_colors = $3, analyzed_at = $4
		WHERE id = $5
		RETURNING user_id, filename, original_path, thumbnail_path, uploaded_at
    `

	asset := model.ImageAsset{
		ID:             id,
		Description:    analysis.Description,
		Tags:           analysis.Tags,
		DominantColors: analysis.Colors,
		AnalyzedAt:     &at,
	}

	err := r.db.Master.QueryRowContext(
		ctx, query, analysis.Description, analysis.Tags, analysis.Colors, at, id,
	).Scan(&asset.OwnerID, &asset.Filename, &asset.OriginalPath, &asset.ThumbnailPath, &asset.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ImageAsset{}, ErrAssetNotFound
		}

		return model.ImageAsset{}, fmt.Errorf("apply analysis: failed to update image: %w", err)
	}

	return asset, nil
}

// UpsertMetadata inserts or replaces the metadata row for an asset, keyed on
// image_id so re-analysis never creates duplicates.
func (r *Repository) UpsertMetadata(ctx context.Context, meta model.ImageMetadata) (model.ImageMetadata, error) {
	query := `
		INSERT INTO image_metadata (image_id, user_id, description, tags, colors, ai_processing_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (image_id) DO UPDATE
		SET description = EXCLUDED.description,
		    tags = EXCLUDED.tags,
		    colors = EXCLUDED.colors,
		    ai_processing_status = EXCLUDED.ai_processing_status,
		    created_at = EXCLUDED.created_at
		RETURNING created_at
    `

	err := r.db.Master.QueryRowContext(
		ctx, query,
		meta.ImageID, meta.UserID, meta.Description, meta.Tags, meta.Colors,
		meta.AIProcessingStatus, meta.CreatedAt,
	).Scan(&meta.CreatedAt)
	if err != nil {
		return model.ImageMetadata{}, fmt.Errorf("upsert metadata: failed to save metadata: %w", err)
	}

	return meta, nil
}

// ListMetadata returns up to limit of the most recently created metadata rows,
// newest first, optionally scoped to one owner.
func (r *Repository) ListMetadata(ctx context.Context, ownerID *uuid.UUID, limit int) ([]model.ImageMetadata, error) {
	query := `
		SELECT image_id, user_id, COALESCE(description, ''), tags, colors, ai_processing_status, created_at
		FROM image_metadata
    `

	var args []interface{}
	if ownerID != nil {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, *ownerID, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Master.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list metadata: failed to query metadata: %w", err)
	}
	defer rows.Close()

	var metas []model.ImageMetadata
	for rows.Next() {
		var meta model.ImageMetadata
		if err := rows.Scan(
			&meta.ImageID, &meta.UserID, &meta.Description, &meta.Tags, &meta.Colors,
			&meta.AIProcessingStatus, &meta.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list metadata: failed to scan metadata: %w", err)
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list metadata: rows error: %w", err)
	}

	return metas, nil
}
