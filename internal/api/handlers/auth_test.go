package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/internal/api/handlers"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/testutil"
	"github.com/veritum/veritum-pro/pkg/config"
	"gorm.io/gorm"
)

func setupAuthRouter(t *testing.T) (*chi.Mux, *gorm.DB, *auth.JWTService) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := testutil.CreateTestJWTService()
	authService := auth.NewService(db, jwtService)
	oauthService := auth.NewOAuthService(db, jwtService, &config.OAuthConfig{})
	handler := handlers.NewAuthHandler(authService, oauthService)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)
	r.Post("/api/v1/auth/logout", handler.Logout)
	r.Get("/api/v1/auth/oauth/url", handler.OAuthURL)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtService))
		r.Post("/api/v1/auth/reset", handler.CompleteReset)
	})

	return r, db, jwtService
}

func TestAuthHandler_Register(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	t.Run("successful registration", func(t *testing.T) {
		body := map[string]string{
			"email":    "newuser@example.com",
			"password": "securepassword123",
			"name":     "New User",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newuser@example.com", resp.User.Email)
		assert.Equal(t, "owner", string(resp.User.Role))
		assert.NotEmpty(t, resp.User.Username)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := map[string]string{
			"email":    "duplicate@example.com",
			"password": "securepassword123",
			"name":     "First User",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		req = testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		body := map[string]string{
			"password": "securepassword123",
			"name":     "No Email",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("password too short", func(t *testing.T) {
		body := map[string]string{
			"email":    "shortpw@example.com",
			"password": "short",
			"name":     "Short PW",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	registerBody := map[string]string{
		"email":    "logintest@example.com",
		"password": "securepassword123",
		"name":     "Login Test",
	}
	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", registerBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("successful login sets session cookie", func(t *testing.T) {
		body := map[string]string{
			"email":    "logintest@example.com",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		var tokenCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == "token" {
				tokenCookie = c
			}
		}
		require.NotNil(t, tokenCookie)
		assert.Equal(t, resp.Token, tokenCookie.Value)
		assert.True(t, tokenCookie.HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    "logintest@example.com",
			"password": "wrongpassword",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("non-existent user", func(t *testing.T) {
		body := map[string]string{
			"email":    "nobody@example.com",
			"password": "anypassword1",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		router, db, _ := setupAuthRouter(t)
		user := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(user).Update("is_active", false).Error)

		body := map[string]string{
			"email":    user.Email,
			"password": "testpassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var tokenCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.Empty(t, tokenCookie.Value)
	assert.Equal(t, -1, tokenCookie.MaxAge)
}

func TestAuthHandler_CompleteReset(t *testing.T) {
	router, db, jwtService := setupAuthRouter(t)

	t.Run("reset required flow", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(user).Update("reset_required", true).Error)
		token := testutil.GenerateTestToken(t, jwtService, user)

		body := map[string]string{"new_password": "freshpassword123"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/reset", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.ResetRequired)
	})

	t.Run("reset not pending", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		token := testutil.GenerateTestToken(t, jwtService, user)

		body := map[string]string{"new_password": "freshpassword123"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/reset", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAuthHandler_OAuthURL(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	t.Run("not configured", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/auth/oauth/url?state=abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("missing state", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/auth/oauth/url", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
