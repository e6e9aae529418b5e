package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserPreferences{},
		&models.Plan{},
		&models.Suite{},
		&models.Feature{},
		&models.PlanPermission{},
		&models.Lawsuit{},
		&models.UserSubscription{},
		&models.EmailSetting{},
		&models.TranslationJob{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates an active owner account.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + suffix + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		Username:     "test-" + suffix,
		Role:         models.RoleOwner,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestOperator creates a subordinate account inheriting from parent.
func CreateTestOperator(t *testing.T, db *gorm.DB, parent *models.User) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	op := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "operator-" + suffix + "@example.com",
		PasswordHash: hash,
		Name:         "Test Operator",
		Username:     "operator-" + suffix,
		Role:         models.RoleOperator,
		IsActive:     true,
		ParentUserID: &parent.ID,
	}

	if err := db.Create(op).Error; err != nil {
		t.Fatalf("failed to create test operator: %v", err)
	}

	return op
}

// CreateTestSuite creates a suite with the given key.
func CreateTestSuite(t *testing.T, db *gorm.DB, key string, order int) *models.Suite {
	t.Helper()

	suite := &models.Suite{
		Base:         models.Base{ID: uuid.New()},
		Key:          key,
		Name:         models.LocalizedText{"pt-BR": key},
		IsActive:     true,
		DisplayOrder: order,
	}
	if err := db.Create(suite).Error; err != nil {
		t.Fatalf("failed to create test suite: %v", err)
	}
	return suite
}

// CreateTestFeature creates a feature under a suite.
func CreateTestFeature(t *testing.T, db *gorm.DB, suite *models.Suite, key string) *models.Feature {
	t.Helper()

	feature := &models.Feature{
		Base:    models.Base{ID: uuid.New()},
		SuiteID: suite.ID,
		Key:     key,
		Name:    key,
	}
	if err := db.Create(feature).Error; err != nil {
		t.Fatalf("failed to create test feature: %v", err)
	}
	return feature
}

// CreateTestPlan creates an active plan granting the given features.
func CreateTestPlan(t *testing.T, db *gorm.DB, name string, features ...*models.Feature) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		Base:     models.Base{ID: uuid.New()},
		Name:     name,
		IsActive: true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	for _, f := range features {
		grant := &models.PlanPermission{PlanID: plan.ID, FeatureID: f.ID}
		if err := db.Create(grant).Error; err != nil {
			t.Fatalf("failed to create plan permission: %v", err)
		}
	}
	return plan
}

// AssignPlan sets the user's plan reference.
func AssignPlan(t *testing.T, db *gorm.DB, user *models.User, plan *models.Plan) {
	t.Helper()
	if err := db.Model(user).Update("plan_id", plan.ID).Error; err != nil {
		t.Fatalf("failed to assign plan: %v", err)
	}
	user.PlanID = &plan.ID
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}
