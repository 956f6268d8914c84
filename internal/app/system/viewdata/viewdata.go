// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync/atomic"

	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header until SetSiteName is called.
const DefaultSiteName = "Health Dashboard"

var siteName atomic.Value

func init() { siteName.Store(DefaultSiteName) }

// SetSiteName sets the name shown in the header and page titles.
// Call this once at startup from bootstrap.
func SetSiteName(name string) {
	if name == "" {
		name = DefaultSiteName
	}
	siteName.Store(name)
}

// SiteName returns the configured site name.
func SiteName() string { return siteName.Load().(string) }

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/dashboard"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Username   string
	Role       string
	IsAdmin    bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string // CSRF token for forms (use in hidden input field)

	// One-shot alerts carried over a redirect.
	Flashes []auth.Flash
}

// NewBaseVM creates a fully populated BaseVM for a page.
// backDefault is used for the back link when the request carries no return URL.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName(),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Username = u.Username
		vm.Role = u.Role
		vm.IsAdmin = u.IsAdmin()
	}
	return vm
}

// New creates a BaseVM without a title or back link.
func New(r *http.Request) BaseVM {
	return NewBaseVM(r, "", "/")
}

// WithFlashes moves any queued flash messages into vm. sm may be nil.
func (vm BaseVM) WithFlashes(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager) BaseVM {
	if sm != nil {
		vm.Flashes = sm.TakeFlashes(w, r)
	}
	return vm
}
