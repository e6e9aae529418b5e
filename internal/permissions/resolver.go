// Package permissions computes the set of enabled product modules and
// features for a user from plan/feature grant rows, with inheritance from a
// parent account for operator users.
package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var ErrParentNotFound = errors.New("parent user not found")

// ModuleGrant is one enabled suite and its enabled feature keys, in the
// order the grant join discovered them.
type ModuleGrant struct {
	Suite    string   `json:"suite"`
	Features []string `json:"features"`
}

// GrantSet is the resolved entitlement: suites in discovery order.
type GrantSet []ModuleGrant

// Has reports whether the set enables the module, after normalization.
func (g GrantSet) Has(moduleKey string) bool {
	key := NormalizeModuleKey(moduleKey)
	for _, grant := range g {
		if NormalizeModuleKey(grant.Suite) == key {
			return true
		}
	}
	return false
}

// Features returns the enabled feature keys for a module, or nil.
func (g GrantSet) Features(moduleKey string) []string {
	key := NormalizeModuleKey(moduleKey)
	for _, grant := range g {
		if NormalizeModuleKey(grant.Suite) == key {
			return grant.Features
		}
	}
	return nil
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve computes the user's grant set:
// a plan of their own wins; otherwise an operator inherits the parent's
// plan; otherwise the set is empty. Resolution happens per request — a
// parent plan change is visible on the operator's next call.
func (r *Resolver) Resolve(ctx context.Context, user *models.User) (GrantSet, error) {
	planID, err := r.effectivePlanID(ctx, user)
	if err != nil {
		return nil, err
	}
	if planID == nil {
		return GrantSet{}, nil
	}
	return r.resolvePlan(ctx, *planID)
}

func (r *Resolver) effectivePlanID(ctx context.Context, user *models.User) (*uuid.UUID, error) {
	if user.PlanID != nil {
		return user.PlanID, nil
	}
	if user.ParentUserID == nil {
		return nil, nil
	}

	var parent models.User
	if err := r.db.WithContext(ctx).First(&parent, *user.ParentUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return parent.PlanID, nil
}

// grantRow is one (suite_key, feature_key) pair from the entitlement join.
type grantRow struct {
	SuiteKey   string
	FeatureKey string
}

func (r *Resolver) resolvePlan(ctx context.Context, planID uuid.UUID) (GrantSet, error) {
	// Raw-table joins bypass gorm's soft-delete scope, so the deleted_at
	// filters are spelled out: a deleted plan, feature, or suite confers
	// nothing.
	var rows []grantRow
	err := r.db.WithContext(ctx).
		Table("plan_permissions").
		Select("suites.key AS suite_key, features.key AS feature_key").
		Joins("JOIN plans ON plans.id = plan_permissions.plan_id AND plans.deleted_at IS NULL").
		Joins("JOIN features ON features.id = plan_permissions.feature_id AND features.deleted_at IS NULL").
		Joins("JOIN suites ON suites.id = features.suite_id AND suites.deleted_at IS NULL").
		Where("plan_permissions.plan_id = ?", planID).
		Order("suites.display_order, features.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Group by suite preserving discovery order; features accumulate in
	// join order.
	set := GrantSet{}
	index := make(map[string]int)
	for _, row := range rows {
		suite := NormalizeModuleKey(row.SuiteKey)
		i, seen := index[suite]
		if !seen {
			index[suite] = len(set)
			set = append(set, ModuleGrant{Suite: suite})
			i = len(set) - 1
		}
		set[i].Features = append(set[i].Features, row.FeatureKey)
	}
	return set, nil
}
