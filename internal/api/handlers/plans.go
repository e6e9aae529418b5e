package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/database/models"
)

type PlansHandler struct {
	plans         *billing.PlanService
	subscriptions *billing.SubscriptionService
}

func NewPlansHandler(plans *billing.PlanService, subscriptions *billing.SubscriptionService) *PlansHandler {
	return &PlansHandler{plans: plans, subscriptions: subscriptions}
}

// ListPublic is the unauthenticated pricing-page listing.
func (h *PlansHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListActive(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list plans"})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PlansHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list plans"})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PlansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input billing.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := input.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	plan, err := h.plans.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PlansHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	plan, err := h.plans.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PlansHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var input billing.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	plan, err := h.plans.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PlansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.plans.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Plan deleted"})
}

type grantsRequest struct {
	FeatureIDs []uuid.UUID `json:"feature_ids"`
}

// ReplaceGrants swaps the plan's feature grants atomically.
func (h *PlansHandler) ReplaceGrants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req grantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.plans.ReplaceGrants(r.Context(), id, req.FeatureIDs); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Permissions replaced"})
}

type subscribeRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
	Cycle  string    `json:"cycle"`
}

// Subscribe puts the signed-in user on a plan.
func (h *PlansHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	subscription, err := h.subscriptions.Subscribe(r.Context(),
		middleware.GetUserID(r.Context()), req.PlanID, models.BillingCycle(req.Cycle))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidCycle):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid billing cycle"})
		case errors.Is(err, billing.ErrPlanNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Plan not found"})
		case errors.Is(err, billing.ErrSubscriberNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Subscription failed"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, subscription)
}

// CurrentSubscription returns the signed-in user's active subscription.
func (h *PlansHandler) CurrentSubscription(w http.ResponseWriter, r *http.Request) {
	subscription, err := h.subscriptions.Current(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, billing.ErrNoActiveSubscription) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No active subscription"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load subscription"})
		return
	}
	writeJSON(w, http.StatusOK, subscription)
}

// CancelSubscription cancels the signed-in user's active subscription.
func (h *PlansHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	err := h.subscriptions.Cancel(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, billing.ErrNoActiveSubscription) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No active subscription"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Cancellation failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Subscription canceled"})
}

func (h *PlansHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrPlanNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Plan not found"})
	case errors.Is(err, billing.ErrPlanNameTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Plan name already in use"})
	case errors.Is(err, billing.ErrFeatureNotFound):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown feature in grant set"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Operation failed"})
	}
}
