package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-api/internal/httpx/middlewares"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/metrics"
)

// NewRouter wires the REST surface. The route shape mirrors the original
// storefront API so existing clients keep working.
func NewRouter(h *Handler, resolver middlewares.TokenResolver, m *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Metrics(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/categories/list", h.ListCategories)
			r.Get("/{id}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Authenticate(resolver))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/add", h.AddToCart)
				r.Put("/update/{id}", h.UpdateCartItem)
				r.Delete("/remove/{id}", h.RemoveCartItem)
				r.Delete("/clear", h.ClearCart)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/create", h.CreateOrder)
				r.Get("/", h.ListOrders)
				r.Get("/{id}", h.GetOrder)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/update", h.UpdateProfile)
			})
		})
	})

	return r
}
