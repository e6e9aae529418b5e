package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/identity"
	"github.com/veritum/veritum-pro/internal/modules"
	"github.com/veritum/veritum-pro/internal/permissions"
)

type ModulesHandler struct {
	loader   *identity.Loader
	resolver *permissions.Resolver
}

func NewModulesHandler(loader *identity.Loader, resolver *permissions.Resolver) *ModulesHandler {
	return &ModulesHandler{loader: loader, resolver: resolver}
}

type moduleSurfaceResponse struct {
	Surface   modules.Surface `json:"surface"`
	Dashboard string          `json:"dashboard"`
	Features  []string        `json:"features"`
}

// List returns the surfaces the user's grants enable, in grant order.
func (h *ModulesHandler) List(w http.ResponseWriter, r *http.Request) {
	session, grants, ok := h.load(w, r)
	if !ok {
		return
	}

	out := make([]moduleSurfaceResponse, 0, len(grants))
	for _, grant := range grants {
		surface, err := modules.Resolve(grant.Suite)
		if err != nil {
			// A suite outside the known module set has no surface to mount.
			continue
		}
		out = append(out, moduleSurfaceResponse{
			Surface:   surface,
			Dashboard: surface.DashboardFor(session.User.Role),
			Features:  grant.Features,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Get dispatches one module key. Unknown keys are 404; known keys the user's
// plan does not enable are 403.
func (h *ModulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	surface, err := modules.Resolve(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Unknown module"})
		return
	}

	session, grants, ok := h.load(w, r)
	if !ok {
		return
	}

	if !grants.Has(string(surface.Key)) {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Module not enabled for your plan"})
		return
	}

	writeJSON(w, http.StatusOK, moduleSurfaceResponse{
		Surface:   surface,
		Dashboard: surface.DashboardFor(session.User.Role),
		Features:  grants.Features(string(surface.Key)),
	})
}

func (h *ModulesHandler) load(w http.ResponseWriter, r *http.Request) (*identity.Session, permissions.GrantSet, bool) {
	session, err := h.loader.Load(r.Context(), middleware.GetClaims(r.Context()))
	if err != nil {
		if errors.Is(err, identity.ErrNoIdentity) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		} else {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load identity"})
		}
		return nil, nil, false
	}

	grants, err := h.resolver.Resolve(r.Context(), session.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve permissions"})
		return nil, nil, false
	}
	return session, grants, true
}
