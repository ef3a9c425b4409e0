package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeevm/ai-gallery/internal/model"
)

type fakeRepo struct {
	metas  []model.ImageMetadata
	assets map[uuid.UUID]model.ImageAsset

	lastLimit int
	lastOwner *uuid.UUID
}

func (r *fakeRepo) ListMetadata(_ context.Context, ownerID *uuid.UUID, limit int) ([]model.ImageMetadata, error) {
	r.lastLimit = limit
	r.lastOwner = ownerID

	out := make([]model.ImageMetadata, 0, len(r.metas))
	for _, m := range r.metas {
		if ownerID != nil && m.UserID != *ownerID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeRepo) GetAssetsByIDs(_ context.Context, ids []uuid.UUID, ownerID *uuid.UUID) ([]model.ImageAsset, error) {
	// Returned in arbitrary (reversed) order to prove the service reorders.
	out := make([]model.ImageAsset, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		asset, ok := r.assets[ids[i]]
		if !ok {
			continue
		}
		if ownerID != nil && asset.OwnerID != *ownerID {
			continue
		}
		out = append(out, asset)
	}
	return out, nil
}

type fakeResolver struct{}

func (fakeResolver) PublicURL(bucket, objectPath string) string {
	return "http://minio.local/" + bucket + "/" + objectPath
}

func gallerySeed() (*fakeRepo, []uuid.UUID) {
	owner := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	repo := &fakeRepo{
		// Newest first, as the real repository returns them.
		metas: []model.ImageMetadata{
			{
				ImageID:     ids[0],
				UserID:      owner,
				Description: "A golden sunset over the ocean",
				Tags:        model.StringList{"Sunset", "ocean"},
				Colors:      model.StringList{"#ff9900"},
				CreatedAt:   time.Now(),
			},
			{
				ImageID:     ids[1],
				UserID:      owner,
				Description: "City skyline at night",
				Tags:        model.StringList{"city", "night"},
				Colors:      model.StringList{"#112233"},
				CreatedAt:   time.Now().Add(-time.Hour),
			},
			{
				ImageID:     ids[2],
				UserID:      owner,
				Description: "Forest trail in autumn",
				Tags:        model.StringList{"forest", "autumn"},
				Colors:      model.StringList{"#ff9900", "#884400"},
				CreatedAt:   time.Now().Add(-2 * time.Hour),
			},
		},
		assets: map[uuid.UUID]model.ImageAsset{
			ids[0]: {ID: ids[0], OwnerID: owner, Filename: "sunset.jpg", ThumbnailPath: "thumbnails/" + owner.String() + "/1-sunset.jpg"},
			ids[1]: {ID: ids[1], OwnerID: owner, Filename: "city.jpg", ThumbnailPath: owner.String() + "/2-city.jpg"},
			ids[2]: {ID: ids[2], OwnerID: owner, Filename: "forest.jpg", OriginalPath: owner.String() + "/3-forest.jpg"},
		},
	}

	return repo, ids
}

func TestSearchEmptyQuery(t *testing.T) {
	repo, _ := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	for _, q := range []string{"", "   ", "\t"} {
		got, err := svc.Search(context.Background(), q, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	// The empty query never touches the repository.
	assert.Zero(t, repo.lastLimit)
}

func TestSearchMatchesDescriptionCaseInsensitive(t *testing.T) {
	repo, ids := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	got, err := svc.Search(context.Background(), "SUNSET", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[0], got[0].ID)
}

func TestSearchMatchesTags(t *testing.T) {
	repo, ids := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	got, err := svc.Search(context.Background(), "Night", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[1], got[0].ID)
}

func TestSearchMatchesColors(t *testing.T) {
	repo, ids := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	got, err := svc.Search(context.Background(), "#ff9900", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest metadata row wins the first slot even though the repository
	// hands assets back in a different order.
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)
}

func TestSearchNoMatches(t *testing.T) {
	repo, _ := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	got, err := svc.Search(context.Background(), "zebra", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchScopesToOwner(t *testing.T) {
	repo, _ := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	stranger := uuid.New()
	got, err := svc.Search(context.Background(), "sunset", &stranger)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NotNil(t, repo.lastOwner)
	assert.Equal(t, stranger, *repo.lastOwner)
}

func TestSearchResolvesDisplayURLs(t *testing.T) {
	repo, _ := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 1000)

	got, err := svc.Search(context.Background(), "#ff9900", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// A redundant "thumbnails/" prefix is stripped before resolution, so
	// both variants resolve to the same URL shape.
	owner := got[0].OwnerID.String()
	assert.Equal(t, "http://minio.local/thumbnails/"+owner+"/1-sunset.jpg", got[0].PublicURL)
	// Asset without a thumbnail falls back to the original path.
	assert.Equal(t, "http://minio.local/thumbnails/"+owner+"/3-forest.jpg", got[1].PublicURL)
}

func TestSearchPassesLimit(t *testing.T) {
	repo, _ := gallerySeed()
	svc := NewService(repo, fakeResolver{}, "thumbnails", 42)

	_, err := svc.Search(context.Background(), "sunset", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, repo.lastLimit)
}
