package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
)

// companyView is the API shape of a company. The callback key is withheld
// unless the deployment explicitly enables display for integration testing;
// the flag never affects verification itself.
type companyView struct {
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	CallbackKey string `json:"callback_key,omitempty"`
	CreateTime  int64  `json:"create_time"`
	UpdateTime  int64  `json:"update_time"`
}

func (h *BillingHandler) companyView(company model.Company) companyView {
	view := companyView{
		GUID:       company.GUID,
		Name:       company.Name,
		CreateTime: company.CreateTime,
		UpdateTime: company.UpdateTime,
	}
	if h.API.DisplayCallbackKey {
		view.CallbackKey = company.CallbackKey
	}
	return view
}

func (h *BillingHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	company, err := h.Company.CreateCompany(req.Name, req.ProcessorKey)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   h.companyView(company),
	})
}

func (h *BillingHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	company, err := h.Company.GetCompany(guid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to get company")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   h.companyView(company),
	})
}

func (h *BillingHandler) RotateCallbackKey(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	company, err := h.Company.RotateCallbackKey(guid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to rotate callback key")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   h.companyView(company),
	})
}
