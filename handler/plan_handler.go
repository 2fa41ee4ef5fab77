package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
)

func (h *BillingHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	companyGUID := mux.Vars(r)["guid"]

	var req entity.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.Plan.CreatePlan(companyGUID, req)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Company not found")
		return
	case errors.Is(err, dao.ErrDuplicatePlan):
		h.writeError(w, http.StatusConflict, "Plan external id already in use")
		return
	case err != nil:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   plan,
	})
}

func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	companyGUID := mux.Vars(r)["guid"]

	plans, err := h.Plan.ListPlans(companyGUID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   plans,
	})
}

func (h *BillingHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	plan, err := h.Plan.GetPlan(guid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Plan not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to get plan")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   plan,
	})
}

func (h *BillingHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	var req entity.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.Plan.UpdatePlan(guid, req.Name)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Plan not found")
		return
	case err != nil:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   plan,
	})
}

func (h *BillingHandler) DisablePlan(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	plan, err := h.Plan.DisablePlan(guid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Plan not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to disable plan")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   plan,
	})
}
