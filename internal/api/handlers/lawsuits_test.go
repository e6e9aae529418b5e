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
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/lawsuits"
	"github.com/veritum/veritum-pro/internal/testutil"
	"gorm.io/gorm"
)

func setupLawsuitRouter(t *testing.T) (*chi.Mux, *gorm.DB, string, *models.User) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := testutil.CreateTestJWTService()
	user := testutil.CreateTestUser(t, db)
	token := testutil.GenerateTestToken(t, jwtService, user)

	handler := handlers.NewLawsuitsHandler(lawsuits.NewService(db))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtService))
		r.Route("/api/v1/lawsuits", func(r chi.Router) {
			r.Get("/", handler.List)
			r.Post("/", handler.Create)
			r.Get("/{id}", handler.Get)
			r.Put("/{id}", handler.Update)
			r.Put("/{id}/status", handler.UpdateStatus)
			r.Post("/{id}/archive", handler.Archive)
		})
	})

	return r, db, token, user
}

func TestLawsuitsHandler_Create(t *testing.T) {
	router, _, token, _ := setupLawsuitRouter(t)

	t.Run("create with defaults", func(t *testing.T) {
		body := map[string]any{"client_name": "Acme Ltda"}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/lawsuits", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var lawsuit models.Lawsuit
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lawsuit))
		assert.Equal(t, models.LawsuitProspect, lawsuit.Status)
		assert.Zero(t, lawsuit.Value)
	})

	t.Run("create with explicit fields", func(t *testing.T) {
		body := map[string]any{
			"client_name": "Beta SA",
			"case_number": "0001234-56.2026.8.26.0100",
			"status":      "active",
			"value":       25000.50,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/lawsuits", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var lawsuit models.Lawsuit
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lawsuit))
		assert.Equal(t, models.LawsuitActive, lawsuit.Status)
		assert.Equal(t, 25000.50, lawsuit.Value)
	})

	t.Run("missing client name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/lawsuits", map[string]any{}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		body := map[string]any{"client_name": "Gamma", "status": "litigating"}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/lawsuits", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		body := map[string]any{"client_name": "Acme Ltda"}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/lawsuits", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestLawsuitsHandler_List(t *testing.T) {
	router, db, token, user := setupLawsuitRouter(t)

	for _, status := range []models.LawsuitStatus{models.LawsuitProspect, models.LawsuitActive, models.LawsuitActive} {
		require.NoError(t, db.Create(&models.Lawsuit{
			OwnerID:    user.ID,
			ClientName: "Client",
			Status:     status,
		}).Error)
	}

	// Another owner's case must never show up.
	other := testutil.CreateTestUser(t, db)
	require.NoError(t, db.Create(&models.Lawsuit{
		OwnerID:    other.ID,
		ClientName: "Foreign",
		Status:     models.LawsuitActive,
	}).Error)

	t.Run("list all owned", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/lawsuits", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var list []models.Lawsuit
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		assert.Len(t, list, 3)
	})

	t.Run("filter by status", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/lawsuits?status=active", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var list []models.Lawsuit
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		assert.Len(t, list, 2)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/lawsuits?status=bogus", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLawsuitsHandler_UpdateStatus(t *testing.T) {
	router, db, token, user := setupLawsuitRouter(t)

	lawsuit := &models.Lawsuit{
		OwnerID:    user.ID,
		ClientName: "Acme Ltda",
		Status:     models.LawsuitProspect,
	}
	require.NoError(t, db.Create(lawsuit).Error)

	t.Run("move echoes previous status", func(t *testing.T) {
		body := map[string]string{"status": "active"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/lawsuits/"+lawsuit.ID.String()+"/status", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Lawsuit        models.Lawsuit       `json:"lawsuit"`
			PreviousStatus models.LawsuitStatus `json:"previous_status"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, models.LawsuitActive, resp.Lawsuit.Status)
		assert.Equal(t, models.LawsuitProspect, resp.PreviousStatus)
	})

	t.Run("invalid target status", func(t *testing.T) {
		body := map[string]string{"status": "frozen"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/lawsuits/"+lawsuit.ID.String()+"/status", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("other owner's lawsuit", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		foreign := &models.Lawsuit{
			OwnerID:    other.ID,
			ClientName: "Foreign",
			Status:     models.LawsuitActive,
		}
		require.NoError(t, db.Create(foreign).Error)

		body := map[string]string{"status": "done"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/lawsuits/"+foreign.ID.String()+"/status", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestLawsuitsHandler_Archive(t *testing.T) {
	router, db, token, user := setupLawsuitRouter(t)

	lawsuit := &models.Lawsuit{
		OwnerID:    user.ID,
		ClientName: "Acme Ltda",
		Status:     models.LawsuitDone,
	}
	require.NoError(t, db.Create(lawsuit).Error)

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/lawsuits/"+lawsuit.ID.String()+"/archive", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var archived models.Lawsuit
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &archived))
	assert.Equal(t, models.LawsuitArchived, archived.Status)
}
