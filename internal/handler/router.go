package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/craudioviz/partner-portal/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware партнёрского портала.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/partner", func(r chi.Router) {
		r.Post("/applications", h.SubmitApplication)
		r.Get("/applications", h.GetApplication)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/dashboard", h.GetDashboard)

			r.Get("/leads", h.GetLeads)
			r.Post("/leads/{id}/status", h.SetLeadStatus)

			r.Get("/deals", h.GetDeals)
			r.Post("/deals", h.CreateDeal)

			r.Get("/products", h.GetProducts)
			r.Get("/documents", h.GetDocuments)

			r.Post("/chat", h.Chat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
