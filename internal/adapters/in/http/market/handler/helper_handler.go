// internal/adapters/in/http/market/handler/helper_handler.go
package marketHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	usecase "farmlink/internal/application/usecase"
	cartdom "farmlink/internal/domain/cart"
	orderdom "farmlink/internal/domain/order"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
	"farmlink/internal/domain/stock"
	userdom "farmlink/internal/domain/user"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainErr maps usecase/domain errors onto HTTP statuses. Every
// handler funnels its error responses through here so the mapping stays
// in one place.
func writeDomainErr(w http.ResponseWriter, err error) {
	var (
		ise  *stock.InsufficientStockError
		vErr *orderdom.ValidationError
	)

	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		writeErr(w, http.StatusUnauthorized, "not authenticated")

	case errors.Is(err, session.ErrNotAuthorized):
		writeErr(w, http.StatusForbidden, "not authorized")

	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "insufficient stock",
			"available": ise.Available,
		})

	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid delivery info",
			"field":  vErr.Field,
			"reason": vErr.Reason,
		})

	case errors.Is(err, productdom.ErrNotFound),
		errors.Is(err, cartdom.ErrNotFound),
		errors.Is(err, orderdom.ErrNotFound),
		errors.Is(err, userdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")

	case errors.Is(err, usecase.ErrCheckoutAborted):
		writeErr(w, http.StatusConflict, "checkout could not be completed, please retry")

	case errors.Is(err, usecase.ErrProfileExists):
		writeErr(w, http.StatusConflict, "profile already exists")

	case errors.Is(err, orderdom.ErrInvalidTransition):
		writeErr(w, http.StatusConflict, "invalid status transition")

	case errors.Is(err, usecase.ErrCartEmpty),
		errors.Is(err, usecase.ErrCartInvalidArgument),
		errors.Is(err, usecase.ErrProductInvalidArgument),
		errors.Is(err, usecase.ErrOrderInvalidArgument),
		errors.Is(err, usecase.ErrAuthInvalidArgument),
		errors.Is(err, usecase.ErrProductUnavailable),
		errors.Is(err, cartdom.ErrInvalidQuantity),
		errors.Is(err, cartdom.ErrNotPending):
		writeErr(w, http.StatusBadRequest, err.Error())

	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// lastSegment returns the final non-empty path element, or "".
func lastSegment(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), "/")
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	return path[i+1:]
}
