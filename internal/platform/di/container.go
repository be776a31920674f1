// internal/platform/di/container.go
package di

import (
	"context"
	"log"
	"net/http"
	"strings"

	"farmlink/internal/adapters/in/http/market"
	marketHandler "farmlink/internal/adapters/in/http/market/handler"
	"farmlink/internal/adapters/in/http/middleware"
	dbout "farmlink/internal/adapters/out/db"
	fsout "farmlink/internal/adapters/out/firestore"
	gcsout "farmlink/internal/adapters/out/gcs"
	mailout "farmlink/internal/adapters/out/mail"
	usecase "farmlink/internal/application/usecase"
)

// Container wires repositories, usecases and handlers onto the shared
// infra. It owns nothing; Close the Infra instead.
type Container struct {
	Infra *Infra

	Auth      *usecase.AuthUsecase
	Products  *usecase.ProductUsecase
	Cart      *usecase.CartUsecase
	Checkout  *usecase.CheckoutUsecase
	Orders    *usecase.OrderUsecase
	Dashboard *usecase.DashboardUsecase
}

// NewContainer builds the full object graph.
func NewContainer(ctx context.Context, inf *Infra) *Container {
	fs := inf.Firestore.Client
	users := fsout.NewUserRepositoryFS(fs)
	products := fsout.NewProductRepositoryFS(fs)
	cartItems := fsout.NewCartRepositoryFS(fs)
	orders := fsout.NewOrderRepositoryFS(fs)
	checkoutTx := fsout.NewCheckoutTxFS(fs)

	c := &Container{Infra: inf}

	c.Auth = usecase.NewAuthUsecase(users)
	c.Cart = usecase.NewCartUsecase(cartItems, products)
	c.Orders = usecase.NewOrderUsecase(orders)
	c.Dashboard = usecase.NewDashboardUsecase(products, orders)

	c.Products = usecase.NewProductUsecase(products)
	if inf.GCS != nil && inf.ProductImageBucket != "" {
		c.Products.WithImages(gcsout.NewProductImageRepositoryGCS(inf.GCS, inf.ProductImageBucket))
	}

	c.Checkout = usecase.NewCheckoutUsecase(cartItems, checkoutTx)
	if inf.SendGridAPIKey != "" && inf.SendGridFrom != "" {
		client := mailout.NewSendGridClient(inf.SendGridAPIKey)
		c.Checkout.WithMailer(mailout.NewOrderMailer(client, inf.SendGridFrom))
		log.Printf("[di.container] order confirmation mail enabled from=%s", inf.SendGridFrom)
	} else {
		log.Printf("[di.container] order confirmation mail disabled (SendGrid not configured)")
	}
	if inf.Postgres != nil {
		archive := dbout.NewOrderArchivePG(inf.Postgres.Client)
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Printf("[di.container] WARN: order archive schema init failed: %v (archive disabled)", err)
		} else {
			c.Checkout.WithArchive(archive)
			log.Printf("[di.container] order archive enabled")
		}
	}

	return c
}

// Handler assembles the HTTP surface: routes, auth, CORS, recover.
func (c *Container) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authn := &middleware.AuthMiddleware{
		FirebaseAuth: c.Infra.FirebaseAuth,
		Auth:         c.Auth,
	}
	public := &middleware.AuthMiddleware{
		FirebaseAuth: c.Infra.FirebaseAuth,
		Auth:         c.Auth,
		Optional:     true,
	}

	market.Register(mux, market.Deps{
		// Catalog browsing is public; the handler itself rejects the
		// farmer-only operations for anonymous sessions.
		Product:   public.Handler(marketHandler.NewProductHandler(c.Products)),
		Cart:      authn.Handler(marketHandler.NewCartHandler(c.Cart)),
		Checkout:  authn.Handler(marketHandler.NewCheckoutHandler(c.Checkout)),
		Order:     authn.Handler(marketHandler.NewOrderHandler(c.Orders)),
		Dashboard: authn.Handler(marketHandler.NewDashboardHandler(c.Dashboard)),
		Profile:   authn.Handler(marketHandler.NewProfileHandler(c.Auth)),
	})

	cors := middleware.CORS(strings.TrimSpace(c.Infra.Config.AllowedCORSOrigins))
	return cors(middleware.Recover(mux))
}
