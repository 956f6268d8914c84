// internal/app/features/pages/pages.go
package pages

import (
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// Handler serves static content pages. They are public so the disclaimer can
// be read before signing in.
type Handler struct{}

// NewHandler creates a new pages Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// PageVM is the view model for page content.
type PageVM struct {
	viewdata.BaseVM
	Slug string
}

// DisclaimerRouter returns a router for the disclaimer page.
func (h *Handler) DisclaimerRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage("disclaimer", "Disclaimer"))
	return r
}

// showPage returns a handler that renders the pages/<slug> template.
func (h *Handler) showPage(slug, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vm := PageVM{
			BaseVM: viewdata.NewBaseVM(r, title, "/"),
			Slug:   slug,
		}
		templates.Render(w, r, "pages/"+slug, vm)
	}
}
