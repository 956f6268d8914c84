// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Handler provides the root route.
type Handler struct{}

// NewHandler creates a new home Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index sends signed-in users to their dashboard and everyone else to the sign-in form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
