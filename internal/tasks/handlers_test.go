package tasks_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/tasks"
	"github.com/veritum/veritum-pro/internal/testutil"
	"github.com/veritum/veritum-pro/pkg/util"
	"gorm.io/gorm"
)

// scriptedGenerator answers "translated" unless the prompt contains failOn.
type scriptedGenerator struct {
	failOn string
}

func (s *scriptedGenerator) Generate(_ context.Context, prompt string, _ bool) (string, error) {
	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return "", errors.New("model unavailable")
	}
	return "translated", nil
}

func newHandler(db *gorm.DB, gen ai.ContentGenerator) *tasks.Handler {
	gateway := ai.NewGateway("platform-key", func(context.Context, string) (ai.ContentGenerator, error) {
		return gen, nil
	})
	return tasks.NewHandler(db, gateway, billing.NewSubscriptionService(db), util.NewLogger("test"))
}

func TestHandleTranslateBatch(t *testing.T) {
	t.Run("completes and stores per-target results", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.CleanupTestDB(t, db)
		handler := newHandler(db, &scriptedGenerator{})
		user := testutil.CreateTestUser(t, db)

		job := models.TranslationJob{
			UserID: user.ID,
			Items: models.TranslationItems{
				{Text: "cláusula primeira", Targets: []string{"inglês", "espanhol"}},
				{Text: "cláusula segunda", Targets: []string{"inglês"}},
			},
		}
		require.NoError(t, db.Create(&job).Error)

		task, err := tasks.NewTranslateBatchTask(job.ID, "")
		require.NoError(t, err)
		require.NoError(t, handler.HandleTranslateBatch(context.Background(), task))

		var fresh models.TranslationJob
		require.NoError(t, db.First(&fresh, job.ID).Error)
		assert.Equal(t, models.JobCompleted, fresh.Status)
		require.Len(t, fresh.Results, 2)
		assert.Len(t, fresh.Results[0].Translations, 2)
		assert.Equal(t, "translated", fresh.Results[1].Translations["inglês"])
	})

	t.Run("item failure marks the job failed without retry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.CleanupTestDB(t, db)
		handler := newHandler(db, &scriptedGenerator{failOn: "cláusula segunda"})
		user := testutil.CreateTestUser(t, db)

		job := models.TranslationJob{
			UserID: user.ID,
			Items: models.TranslationItems{
				{Text: "cláusula primeira", Targets: []string{"inglês"}},
				{Text: "cláusula segunda", Targets: []string{"inglês"}},
			},
		}
		require.NoError(t, db.Create(&job).Error)

		task, err := tasks.NewTranslateBatchTask(job.ID, "")
		require.NoError(t, err)
		err = handler.HandleTranslateBatch(context.Background(), task)
		require.Error(t, err)

		var fresh models.TranslationJob
		require.NoError(t, db.First(&fresh, job.ID).Error)
		assert.Equal(t, models.JobFailed, fresh.Status)
		assert.Contains(t, fresh.Error, "model unavailable")
		assert.Empty(t, fresh.Results)
	})

	t.Run("non-pending job is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.CleanupTestDB(t, db)
		handler := newHandler(db, &scriptedGenerator{})
		user := testutil.CreateTestUser(t, db)

		job := models.TranslationJob{UserID: user.ID, Status: models.JobCompleted}
		require.NoError(t, db.Create(&job).Error)

		task, err := tasks.NewTranslateBatchTask(job.ID, "")
		require.NoError(t, err)
		assert.NoError(t, handler.HandleTranslateBatch(context.Background(), task))
	})
}

func TestHandleSubscriptionSweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	handler := newHandler(db, &scriptedGenerator{})

	user := testutil.CreateTestUser(t, db)
	plan := testutil.CreateTestPlan(t, db, "GROWTH")

	subscription := models.UserSubscription{
		UserID:    user.ID,
		PlanID:    plan.ID,
		Cycle:     models.CycleMonthly,
		Status:    models.SubscriptionActive,
		StartedAt: time.Now().Add(-40 * 24 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-10 * 24 * time.Hour).Unix(),
	}
	require.NoError(t, db.Create(&subscription).Error)
	testutil.AssignPlan(t, db, user, plan)

	require.NoError(t, handler.HandleSubscriptionSweep(context.Background(), tasks.NewSubscriptionSweepTask()))

	var fresh models.UserSubscription
	require.NoError(t, db.First(&fresh, subscription.ID).Error)
	assert.Equal(t, models.SubscriptionExpired, fresh.Status)
}
