package handler

import (
	"encoding/json"
	"net/http"

	"github.com/billyproject/billy/config"
	billingUsecase "github.com/billyproject/billy/usecase/billing"
	companyUsecase "github.com/billyproject/billy/usecase/company"
	planUsecase "github.com/billyproject/billy/usecase/plan"
	reconcileUsecase "github.com/billyproject/billy/usecase/reconcile"
)

type BillingHandler struct {
	Company   companyUsecase.CompanyUsecase
	Billing   billingUsecase.BillingUsecase
	Plan      planUsecase.PlanUsecase
	Reconcile reconcileUsecase.ReconcileUsecase
	API       config.APIConfig
}

func NewBillingHandler(
	company companyUsecase.CompanyUsecase,
	billing billingUsecase.BillingUsecase,
	plan planUsecase.PlanUsecase,
	reconcile reconcileUsecase.ReconcileUsecase,
	apiCfg config.APIConfig,
) *BillingHandler {
	return &BillingHandler{
		Company:   company,
		Billing:   billing,
		Plan:      plan,
		Reconcile: reconcile,
		API:       apiCfg,
	}
}

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *BillingHandler) writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	if h.API.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	enc.Encode(body)
}

func (h *BillingHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, APIResponse{
		Status:  "error",
		Message: message,
	})
}
