package handler

import (
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/billyproject/billy/infra/db/dao"
	reconcileUsecase "github.com/billyproject/billy/usecase/reconcile"
)

// SignatureHeader carries the HMAC hex signature of the raw callback body.
const SignatureHeader = "X-Billy-Signature"

// ProcessorCallback ingests an asynchronous processor notification. Replies
// 2xx for verified deliveries whether applied, duplicate, or rejected, so the
// processor stops retrying; only verification failure and storage trouble
// are non-2xx.
func (h *BillingHandler) ProcessorCallback(w http.ResponseWriter, r *http.Request) {
	companyGUID := mux.Vars(r)["guid"]

	rawPayload, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := h.Reconcile.IngestCallback(r.Context(), companyGUID, rawPayload, r.Header.Get(SignatureHeader))
	switch {
	case errors.Is(err, dao.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Company not found")
		return
	case errors.Is(err, reconcileUsecase.ErrVerificationFailed):
		h.writeError(w, http.StatusForbidden, "Callback verification failed")
		return
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, "Failed to process callback")
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]string{
			"event_guid": event.GUID,
			"outcome":    event.Outcome,
		},
	})
}
