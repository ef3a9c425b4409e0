package image

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/avdeevm/ai-gallery/internal/model"
)

// replicaSetup builds a repository whose master and slave are separate mocks.
// The slave carries no expectations, so any statement routed to it errors out
// and fails the calling test.
func replicaSetup(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	master, masterMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Close() })

	slave, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = slave.Close() })

	return NewRepository(&dbpg.DB{Master: master, Slaves: []*sql.DB{slave}}), masterMock
}

func TestInsertAssetWritesToMaster(t *testing.T) {
	repo, master := replicaSetup(t)

	id := uuid.New()
	uploadedAt := time.Now()
	master.ExpectQuery(`INSERT INTO images`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(id.String(), uploadedAt))

	asset, err := repo.InsertAsset(context.Background(), model.ImageAsset{
		OwnerID:       uuid.New(),
		Filename:      "1-a.jpg",
		OriginalPath:  "o/1-a.jpg",
		ThumbnailPath: "t/1-a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, id, asset.ID)
	assert.NoError(t, master.ExpectationsWereMet())
}

func TestApplyAnalysisWritesToMaster(t *testing.T) {
	repo, master := replicaSetup(t)

	owner := uuid.New()
	master.ExpectQuery(`UPDATE images`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "filename", "original_path", "thumbnail_path", "uploaded_at"}).
			AddRow(owner.String(), "1-a.jpg", "o/1-a.jpg", "t/1-a.jpg", time.Now()))

	asset, err := repo.ApplyAnalysis(context.Background(), uuid.New(), model.Analysis{
		Description: "a sunset",
		Tags:        model.StringList{"sunset"},
		Colors:      model.StringList{"#ff9900"},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, owner, asset.OwnerID)
	assert.NoError(t, master.ExpectationsWereMet())
}

func TestUpsertMetadataWritesToMaster(t *testing.T) {
	repo, master := replicaSetup(t)

	createdAt := time.Now()
	master.ExpectQuery(`INSERT INTO image_metadata`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	meta, err := repo.UpsertMetadata(context.Background(), model.ImageMetadata{
		ImageID:            uuid.New(),
		UserID:             uuid.New(),
		Description:        "a sunset",
		Tags:               model.StringList{"sunset"},
		Colors:             model.StringList{"#ff9900"},
		AIProcessingStatus: "completed",
		CreatedAt:          createdAt,
	})
	require.NoError(t, err)
	assert.Equal(t, createdAt, meta.CreatedAt)
	assert.NoError(t, master.ExpectationsWereMet())
}

// The scan limit is a bind parameter, not spliced into the statement.
func TestListMetadataBindsLimit(t *testing.T) {
	repo, master := replicaSetup(t)
	owner := uuid.New()

	master.ExpectQuery(`ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(owner, 42).
		WillReturnRows(sqlmock.NewRows([]string{"image_id", "user_id", "description", "tags", "colors", "ai_processing_status", "created_at"}).
			AddRow(uuid.NewString(), owner.String(), "a sunset", "{sunset}", "{#ff9900}", "completed", time.Now()))

	metas, err := repo.ListMetadata(context.Background(), &owner, 42)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, model.StringList{"sunset"}, metas[0].Tags)
	assert.NoError(t, master.ExpectationsWereMet())
}

func TestListMetadataBindsLimitWithoutOwner(t *testing.T) {
	repo, master := replicaSetup(t)

	master.ExpectQuery(`ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(1000).
		WillReturnRows(sqlmock.NewRows([]string{"image_id", "user_id", "description", "tags", "colors", "ai_processing_status", "created_at"}))

	metas, err := repo.ListMetadata(context.Background(), nil, 1000)
	require.NoError(t, err)
	assert.Empty(t, metas)
	assert.NoError(t, master.ExpectationsWereMet())
}
