package viewdata

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/login", nil)
	vm := NewBaseVM(r, "Sign in", "/")

	assert.Equal(t, DefaultSiteName, vm.SiteName)
	assert.Equal(t, "Sign in", vm.Title)
	assert.Equal(t, "/login", vm.CurrentPath)
	assert.False(t, vm.IsLoggedIn)
	assert.False(t, vm.IsAdmin)
}

func TestNewBaseVM_SignedIn(t *testing.T) {
	t.Cleanup(func() { SetSiteName("") })
	SetSiteName("Study Dashboard")

	r := httptest.NewRequest("GET", "/admin/users", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{Username: "admin", Role: "admin", Token: "t"})
	vm := New(r)

	assert.Equal(t, "Study Dashboard", vm.SiteName)
	assert.True(t, vm.IsLoggedIn)
	assert.True(t, vm.IsAdmin)
	assert.Equal(t, "admin", vm.Username)
}

func TestWithFlashes_NilManager(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	vm := New(r).WithFlashes(httptest.NewRecorder(), r, nil)
	assert.Empty(t, vm.Flashes)
}
