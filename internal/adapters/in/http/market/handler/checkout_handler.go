// internal/adapters/in/http/market/handler/checkout_handler.go
package marketHandler

import (
	"net/http"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/adapters/in/http/middleware"
	orderdom "farmlink/internal/domain/order"
)

// CheckoutHandler turns the cart into orders.
//
//	POST /market/me/checkout  {deliveryInfo: {...}}
//
// On success it returns the created orders, one per farm.
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		DeliveryInfo orderdom.DeliveryInfo `json:"deliveryInfo"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	orders, err := h.uc.Checkout(r.Context(), sess, body.DeliveryInfo)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"orders": orders,
	})
}
