// internal/adapters/in/http/market/router.go
package market

import (
	"log"
	"net/http"
)

// Deps is the marketplace handler set.
type Deps struct {
	Product   http.Handler
	Cart      http.Handler
	Checkout  http.Handler
	Order     http.Handler
	Dashboard http.Handler
	Profile   http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so a
// partial wiring never crashes the server).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[market.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers the marketplace routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog
	handleSafe(mux, "/market/products", deps.Product, "Product")
	handleSafe(mux, "/market/products/", deps.Product, "Product")
	handleSafe(mux, "/market/me/products", deps.Product, "Product(me)")

	// cart
	handleSafe(mux, "/market/me/cart", deps.Cart, "Cart")
	handleSafe(mux, "/market/me/cart/", deps.Cart, "Cart")

	// checkout
	handleSafe(mux, "/market/me/checkout", deps.Checkout, "Checkout")

	// orders
	handleSafe(mux, "/market/orders/", deps.Order, "Order")
	handleSafe(mux, "/market/me/orders", deps.Order, "Order(me)")

	// dashboard
	handleSafe(mux, "/market/me/dashboard", deps.Dashboard, "Dashboard")

	// profile
	handleSafe(mux, "/market/register", deps.Profile, "Profile(register)")
	handleSafe(mux, "/market/me", deps.Profile, "Profile(me)")
}
