// Package search implements free-text matching over image metadata.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avdeevm/ai-gallery/internal/model"
)

// repository defines the read operations search needs.
type repository interface {
	ListMetadata(ctx context.Context, ownerID *uuid.UUID, limit int) ([]model.ImageMetadata, error)
	GetAssetsByIDs(ctx context.Context, ids []uuid.UUID, ownerID *uuid.UUID) ([]model.ImageAsset, error)
}

// urlResolver turns a bucket-relative path into a best-effort display URL.
type urlResolver interface {
	PublicURL(bucket, objectPath string) string
}

// Service answers free-text queries over the metadata rows.
type Service struct {
	repo             repository
	urls             urlResolver
	thumbnailsBucket string
	limit            int
}

// NewService creates a search Service scanning at most limit of the newest
// metadata rows per query.
func NewService(repo repository, urls urlResolver, thumbnailsBucket string, limit int) *Service {
	return &Service{
		repo:             repo,
		urls:             urls,
		thumbnailsBucket: thumbnailsBucket,
		limit:            limit,
	}
}

// Search filters the newest metadata rows by a case-insensitive substring
// match over description, tags and colors, in that order, and returns the
// matching assets in metadata scan order (newest first) with display URLs
// resolved. An empty query is an explicit empty result, not "no filter".
func (s *Service) Search(ctx context.Context, query string, ownerID *uuid.UUID) ([]model.ImageAsset, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.ImageAsset{}, nil
	}

	metas, err := s.repo.ListMetadata(ctx, ownerID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search: failed to load metadata: %w", err)
	}

	var matchedIDs []uuid.UUID
	for _, meta := range metas {
		if rowMatches(meta, q) {
			matchedIDs = append(matchedIDs, meta.ImageID)
		}
	}

	if len(matchedIDs) == 0 {
		return []model.ImageAsset{}, nil
	}

	assets, err := s.repo.GetAssetsByIDs(ctx, matchedIDs, ownerID)
	if err != nil {
		return nil, fmt.Errorf("search: failed to load images: %w", err)
	}

	byID := make(map[uuid.UUID]model.ImageAsset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}

	// Result order follows the metadata scan order, not the fetch-by-id order.
	results := make([]model.ImageAsset, 0, len(matchedIDs))
	for _, id := range matchedIDs {
		asset, ok := byID[id]
		if !ok {
			continue
		}
		asset.PublicURL = s.displayURL(asset)
		results = append(results, asset)
	}

	return results, nil
}

// rowMatches reports whether the query substring appears in the description,
// any tag, or any color, short-circuiting in that order.
func rowMatches(meta model.ImageMetadata, q string) bool {
	if strings.Contains(strings.ToLower(meta.Description), q) {
		return true
	}

	for _, tag := range meta.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}

	for _, color := range meta.Colors {
		if strings.Contains(strings.ToLower(color), q) {
			return true
		}
	}

	return false
}

// displayURL resolves a public URL from the thumbnail path, falling back to
// the original path. A redundant leading bucket segment is stripped before
// resolution.
func (s *Service) displayURL(asset model.ImageAsset) string {
	p := asset.ThumbnailPath
	if p == "" {
		p = asset.OriginalPath
	}
	if p == "" {
		return ""
	}

	p = strings.TrimPrefix(p, s.thumbnailsBucket+"/")
	p = strings.TrimPrefix(p, "/")

	return s.urls.PublicURL(s.thumbnailsBucket, p)
}
