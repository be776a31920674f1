// internal/adapters/in/http/market/handler/order_handler.go
package marketHandler

import (
	"net/http"
	"strings"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/adapters/in/http/middleware"
	orderdom "farmlink/internal/domain/order"
)

// OrderHandler serves order history and the seller's status updates.
//
//	GET   /market/me/orders              caller's orders (buyer or farmer side)
//	GET   /market/orders/{id}            one order (buyer or farmer of it)
//	PATCH /market/orders/{id}/status     advance status {status} (farmer)
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) http.Handler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/me/orders"):
		h.handleListMine(w, r)
	case r.Method == http.MethodPatch && strings.HasSuffix(path, "/status"):
		h.handleAdvance(w, r, lastSegment(strings.TrimSuffix(path, "/status")))
	case r.Method == http.MethodGet:
		h.handleGet(w, r, lastSegment(path))
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *OrderHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	orders, err := h.uc.ListMine(r.Context(), sess)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if orders == nil {
		orders = []orderdom.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	sess := middleware.SessionFrom(r.Context())
	o, err := h.uc.Get(r.Context(), sess, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleAdvance(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	o, err := h.uc.Advance(r.Context(), sess, id, orderdom.Status(strings.TrimSpace(body.Status)))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
