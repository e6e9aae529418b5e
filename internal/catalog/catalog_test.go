package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/internal/catalog"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/testutil"
	"github.com/veritum/veritum-pro/pkg/util"
)

func TestService_Suites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := catalog.NewService(db, nil)
	ctx := context.Background()

	t.Run("create and ordered listing", func(t *testing.T) {
		_, err := svc.CreateSuite(ctx, catalog.SuiteInput{Key: "scriptor", DisplayOrder: 2})
		require.NoError(t, err)
		_, err = svc.CreateSuite(ctx, catalog.SuiteInput{Key: "nexus", DisplayOrder: 1})
		require.NoError(t, err)

		suites, err := svc.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, suites, 2)
		assert.Equal(t, "nexus", suites[0].Key)
		assert.Equal(t, "scriptor", suites[1].Key)
	})

	t.Run("duplicate key is rejected", func(t *testing.T) {
		_, err := svc.CreateSuite(ctx, catalog.SuiteInput{Key: "nexus"})
		assert.ErrorIs(t, err, catalog.ErrSuiteKeyTaken)
	})

	t.Run("deactivation hides from the public list", func(t *testing.T) {
		inactive := false
		suites, err := svc.ListActive(ctx)
		require.NoError(t, err)
		_, err = svc.UpdateSuite(ctx, suites[0].ID, catalog.SuiteInput{IsActive: &inactive, DisplayOrder: suites[0].DisplayOrder})
		require.NoError(t, err)

		active, err := svc.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 1)

		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("features attach to their suite", func(t *testing.T) {
		suites, err := svc.ListActive(ctx)
		require.NoError(t, err)
		suite := suites[0]

		_, err = svc.CreateFeature(ctx, suite.ID, catalog.FeatureInput{Key: "draft", Name: "Drafting"})
		require.NoError(t, err)

		got, err := svc.Get(ctx, suite.ID)
		require.NoError(t, err)
		require.Len(t, got.Features, 1)
		assert.Equal(t, "draft", got.Features[0].Key)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := svc.UpdateSuite(ctx, uuid.New(), catalog.SuiteInput{})
		assert.ErrorIs(t, err, catalog.ErrSuiteNotFound)
		err = svc.DeleteFeature(ctx, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrFeatureNotFound)
	})
}

func TestSnapshot(t *testing.T) {
	logger := util.NewLogger("test")

	t.Run("refresh replaces wholesale", func(t *testing.T) {
		generation := []models.Suite{{Key: "nexus"}}
		snapshot := catalog.NewSnapshot(func(context.Context) ([]models.Suite, error) {
			return generation, nil
		}, logger)

		require.NoError(t, snapshot.Refresh(context.Background()))
		require.Len(t, snapshot.Suites(), 1)

		generation = []models.Suite{{Key: "nexus"}, {Key: "scriptor"}}
		require.NoError(t, snapshot.Refresh(context.Background()))
		assert.Len(t, snapshot.Suites(), 2)
	})

	t.Run("callers get a copy, not the backing slice", func(t *testing.T) {
		snapshot := catalog.NewSnapshot(func(context.Context) ([]models.Suite, error) {
			return []models.Suite{{Key: "nexus"}, {Key: "scriptor"}}, nil
		}, logger)
		require.NoError(t, snapshot.Refresh(context.Background()))

		got := snapshot.Suites()
		got[0].Key = "mangled"

		fresh := snapshot.Suites()
		require.Len(t, fresh, 2)
		assert.Equal(t, "nexus", fresh[0].Key)
		assert.Equal(t, "scriptor", fresh[1].Key)
	})

	t.Run("failed refetch keeps the previous contents", func(t *testing.T) {
		calls := 0
		snapshot := catalog.NewSnapshot(func(context.Context) ([]models.Suite, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("refetch down")
			}
			return []models.Suite{{Key: "nexus"}}, nil
		}, logger)

		require.NoError(t, snapshot.Refresh(context.Background()))
		err := snapshot.Refresh(context.Background())
		assert.Error(t, err)
		assert.Len(t, snapshot.Suites(), 1)
	})
}
