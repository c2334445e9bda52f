package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/order"
)

// detailRejected is returned for every order refused for lack of stock or
// of the product itself.
const detailRejected = "insufficient stock or product not found"

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps err onto a status code. Only unexpected failures are
// logged at error level.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if reason, ok := order.IsRejected(err); ok {
		if reason == order.ReasonStorageFailure {
			writeDetail(w, http.StatusServiceUnavailable, "storage failure")
			return
		}
		writeDetail(w, http.StatusBadRequest, detailRejected)
		return
	}
	switch {
	case errors.Is(err, inventory.ErrValidation):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, inventory.ErrProductNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.Is(err, inventory.ErrProductReferenced):
		writeDetail(w, http.StatusConflict, "product is referenced by orders")
	case errors.Is(err, inventory.ErrInvalidTransition):
		writeDetail(w, http.StatusConflict, "order is not pending")
	case errors.Is(err, inventory.ErrInsufficientStock):
		writeDetail(w, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Warn(ctx, op, "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "request cancelled")
	case errors.Is(err, inventory.ErrStorage):
		h.log.Error(ctx, op, "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "storage failure")
	default:
		h.log.Error(ctx, op, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into v, refusing unknown fields. Any decoding
// failure is reported as a validation error.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &inventory.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// pathID returns the {id} path variable. ok is false when it is not a
// positive integer; such ids name no record.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
