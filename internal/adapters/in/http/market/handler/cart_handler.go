// internal/adapters/in/http/market/handler/cart_handler.go
package marketHandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	usecase "farmlink/internal/application/usecase"
	cartdom "farmlink/internal/domain/cart"
	"farmlink/internal/adapters/in/http/middleware"
)

// CartHandler serves the buyer's cart.
//
//	GET    /market/me/cart             list pending items + total
//	GET    /market/me/cart/watch       live feed (server-sent events)
//	POST   /market/me/cart/items       add item {productId, quantity}
//	PUT    /market/me/cart/items/{id}  set quantity {quantity}
//	DELETE /market/me/cart/items/{id}  remove item
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	isItems := strings.HasSuffix(path, "/cart/items")
	isItem := !isItems && strings.Contains(path, "/cart/items/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/cart"):
		h.handleList(w, r)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/cart/watch"):
		h.handleWatch(w, r)
	case r.Method == http.MethodPost && isItems:
		h.handleAdd(w, r)
	case r.Method == http.MethodPut && isItem:
		h.handleSetQty(w, r, lastSegment(path))
	case r.Method == http.MethodDelete && isItem:
		h.handleRemove(w, r, lastSegment(path))
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())

	items, total, err := h.uc.ListItems(r.Context(), sess)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if items == nil {
		items = []cartdom.LineItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

// handleWatch streams the buyer's pending cart as server-sent events,
// one event per change, until the client disconnects. Disconnection
// cancels the request context, which tears down the store listener.
func (h *CartHandler) handleWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	sub, err := h.uc.WatchItems(r.Context(), sess)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	defer sub.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for items := range sub.Updates {
		if items == nil {
			items = []cartdom.LineItem{}
		}
		payload, err := json.Marshal(map[string]any{
			"items": items,
			"total": cartdom.Total(items),
		})
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	item, err := h.uc.AddItem(r.Context(), sess, body.ProductID, body.Quantity)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request, itemID string) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	item, err := h.uc.UpdateQuantity(r.Context(), sess, itemID, body.Quantity)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request, itemID string) {
	sess := middleware.SessionFrom(r.Context())
	if err := h.uc.RemoveItem(r.Context(), sess, itemID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
