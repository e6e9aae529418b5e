package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/permissions"
	"github.com/veritum/veritum-pro/internal/testutil"
)

func TestPlanService_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := billing.NewPlanService(db)
	ctx := context.Background()

	t.Run("create and list ordering", func(t *testing.T) {
		second, err := svc.Create(ctx, billing.PlanInput{Name: "GROWTH", DisplayOrder: 2})
		require.NoError(t, err)
		first, err := svc.Create(ctx, billing.PlanInput{Name: "SOLO", DisplayOrder: 1})
		require.NoError(t, err)

		plans, err := svc.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, first.ID, plans[0].ID)
		assert.Equal(t, second.ID, plans[1].ID)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, billing.PlanInput{Name: "SOLO"})
		assert.ErrorIs(t, err, billing.ErrPlanNameTaken)
	})

	t.Run("inactive plans drop off the public list", func(t *testing.T) {
		inactive := false
		plan, err := svc.Create(ctx, billing.PlanInput{Name: "LEGACY", IsActive: &inactive})
		require.NoError(t, err)

		public, err := svc.ListActive(ctx)
		require.NoError(t, err)
		for _, p := range public {
			assert.NotEqual(t, plan.ID, p.ID)
		}

		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update unknown plan", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), billing.PlanInput{Name: "X"})
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})
}

func TestPlanInput_Validate(t *testing.T) {
	assert.Empty(t, billing.PlanInput{Name: "OK", PriceMonthly: 99}.Validate())

	problems := billing.PlanInput{PriceMonthly: -1, DiscountYearlyPct: 120}.Validate()
	assert.Contains(t, problems, "name")
	assert.Contains(t, problems, "price")
	assert.Contains(t, problems, "discount")
}

func TestPlanService_ReplaceGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := billing.NewPlanService(db)
	resolver := permissions.NewResolver(db)
	ctx := context.Background()

	suite := testutil.CreateTestSuite(t, db, "scriptor", 1)
	draft := testutil.CreateTestFeature(t, db, suite, "draft")
	sentiment := testutil.CreateTestFeature(t, db, suite, "sentiment")

	plan, err := svc.Create(ctx, billing.PlanInput{Name: "GROWTH"})
	require.NoError(t, err)
	user := testutil.CreateTestUser(t, db)
	testutil.AssignPlan(t, db, user, plan)

	t.Run("replacement swaps the whole set", func(t *testing.T) {
		require.NoError(t, svc.ReplaceGrants(ctx, plan.ID, []uuid.UUID{draft.ID}))

		set, err := resolver.Resolve(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"draft"}, set.Features("scriptor"))

		require.NoError(t, svc.ReplaceGrants(ctx, plan.ID, []uuid.UUID{sentiment.ID}))
		set, err = resolver.Resolve(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"sentiment"}, set.Features("scriptor"))
	})

	t.Run("unknown feature aborts, old grants survive", func(t *testing.T) {
		err := svc.ReplaceGrants(ctx, plan.ID, []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, billing.ErrFeatureNotFound)

		set, err := resolver.Resolve(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"sentiment"}, set.Features("scriptor"))
	})

	t.Run("empty set clears all grants", func(t *testing.T) {
		require.NoError(t, svc.ReplaceGrants(ctx, plan.ID, nil))
		set, err := resolver.Resolve(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, set)
	})
}

func TestSubscriptionService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	plans := billing.NewPlanService(db)
	svc := billing.NewSubscriptionService(db)
	ctx := context.Background()

	plan, err := plans.Create(ctx, billing.PlanInput{Name: "GROWTH"})
	require.NoError(t, err)
	user := testutil.CreateTestUser(t, db)

	t.Run("subscribe sets the user's plan in the same transaction", func(t *testing.T) {
		subscription, err := svc.Subscribe(ctx, user.ID, plan.ID, models.CycleMonthly)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, subscription.Status)
		assert.Greater(t, subscription.ExpiresAt, subscription.StartedAt)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		require.NotNil(t, fresh.PlanID)
		assert.Equal(t, plan.ID, *fresh.PlanID)
	})

	t.Run("resubscribing cancels the previous row", func(t *testing.T) {
		yearly, err := svc.Subscribe(ctx, user.ID, plan.ID, models.CycleYearly)
		require.NoError(t, err)

		current, err := svc.Current(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, yearly.ID, current.ID)

		var count int64
		require.NoError(t, db.Model(&models.UserSubscription{}).
			Where("user_id = ? AND status = ?", user.ID, models.SubscriptionActive).
			Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("invalid cycle", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, user.ID, plan.ID, "weekly")
		assert.ErrorIs(t, err, billing.ErrInvalidCycle)
	})

	t.Run("unknown subscriber or plan", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), plan.ID, models.CycleMonthly)
		assert.ErrorIs(t, err, billing.ErrSubscriberNotFound)
		_, err = svc.Subscribe(ctx, user.ID, uuid.New(), models.CycleMonthly)
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("sweep expires lapsed rows and clears the plan", func(t *testing.T) {
		swept, err := svc.SweepExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Zero(t, swept)

		swept, err = svc.SweepExpired(ctx, time.Now().Add(400*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		_, err = svc.Current(ctx, user.ID)
		assert.ErrorIs(t, err, billing.ErrNoActiveSubscription)

		var fresh models.User
		require.NoError(t, db.First(&fresh, user.ID).Error)
		assert.Nil(t, fresh.PlanID)
	})

	t.Run("cancel without an active subscription", func(t *testing.T) {
		err := svc.Cancel(ctx, user.ID)
		assert.ErrorIs(t, err, billing.ErrNoActiveSubscription)
	})
}
