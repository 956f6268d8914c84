package testutil

import (
	"sync"
	"testing"

	"github.com/dalemusser/healthdash/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// MustBootTemplates boots the waffle template engine once per test binary.
//
// The engine sees the shared layout (resources) plus whatever feature sets
// the test binary imports: a dashboard test gets "dashboard/index" and
// "dashboard/baseline", an admin test gets "adminusers/list", and so on,
// because each feature registers its set in init(). Pages that fall back to
// an error page need the errors feature imported as well.
func MustBootTemplates(t testing.TB) {
	t.Helper()
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if bootErr = eng.Boot(zap.NewNop()); bootErr != nil {
			return
		}
		templates.UseEngine(eng, zap.NewNop())
	})
	if bootErr != nil {
		t.Fatalf("boot templates: %v", bootErr)
	}
}
