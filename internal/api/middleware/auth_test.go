package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/testutil"
)

func TestAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	jwtService := testutil.CreateTestJWTService()
	user := testutil.CreateTestUser(t, db)
	token := testutil.GenerateTestToken(t, jwtService, user)

	handler := middleware.Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, user.ID, middleware.GetUserID(r.Context()))
		assert.Equal(t, user.Email, middleware.GetUserEmail(r.Context()))
		assert.Equal(t, models.RoleOwner, middleware.GetUserRole(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("x-auth-token header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("X-Auth-Token", token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("missing token on API path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("browser navigation redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusFound)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
	})
}

func TestRequireRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	jwtService := testutil.CreateTestJWTService()

	owner := testutil.CreateTestUser(t, db)
	operator := testutil.CreateTestOperator(t, db, owner)

	protected := middleware.Auth(jwtService)(
		middleware.RequireRole(models.RoleOwner, models.RoleAdmin)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})))

	t.Run("owner passes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/admin/users", nil,
			testutil.GenerateTestToken(t, jwtService, owner))
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("operator is forbidden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/admin/users", nil,
			testutil.GenerateTestToken(t, jwtService, operator))
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}
