package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/processor"
)

func (h *BillingHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := h.Billing.Charge(r.Context(), req)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Company not found")
		return
	case errors.Is(err, processor.ErrProcessorUnavailable):
		// The row stays pending; the client retries via the submit endpoint
		// without risking a double charge.
		h.writeJSON(w, http.StatusServiceUnavailable, APIResponse{
			Status:  "error",
			Message: "Processor unavailable, transaction left pending",
			Data:    transaction,
		})
		return
	case errors.Is(err, processor.ErrProcessorRejected):
		h.writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
			Status:  "error",
			Message: "Charge declined",
			Data:    transaction,
		})
		return
	case err != nil:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   transaction,
	})
}

func (h *BillingHandler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	transaction, err := h.Billing.SubmitTransaction(r.Context(), guid)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	case errors.Is(err, processor.ErrProcessorUnavailable):
		h.writeJSON(w, http.StatusServiceUnavailable, APIResponse{
			Status:  "error",
			Message: "Processor unavailable, transaction left pending",
			Data:    transaction,
		})
		return
	case errors.Is(err, processor.ErrProcessorRejected):
		h.writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
			Status:  "error",
			Message: "Charge declined",
			Data:    transaction,
		})
		return
	case err != nil:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   transaction,
	})
}

func (h *BillingHandler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	var req entity.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	refund, err := h.Billing.Refund(r.Context(), guid, req.Amount)
	switch {
	case errors.Is(err, processor.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "External reference unknown to processor")
		return
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	case errors.Is(err, processor.ErrProcessorRejected):
		h.writeError(w, http.StatusUnprocessableEntity, "Refund declined")
		return
	case errors.Is(err, processor.ErrProcessorUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "Processor unavailable")
		return
	case err != nil:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   refund,
	})
}

func (h *BillingHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	transaction, records, err := h.Billing.GetTransaction(guid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"transaction":            transaction,
			"reconciliation_records": records,
		},
	})
}
