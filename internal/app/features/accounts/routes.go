// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// Routes returns the router for the account endpoints (mounted under /api).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/user", h.ServeGetUser)
	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)
	r.Post("/register-toast", h.ServeRegisterToast)

	return r
}
