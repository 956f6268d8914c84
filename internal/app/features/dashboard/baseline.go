// internal/app/features/dashboard/baseline.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// Measure is one anthropometric or lung-function card.
type Measure struct {
	Label string
	Unit  string
	Value string
	Min   string
	Max   string
}

// BaselineVM is the view model for the baseline overview.
type BaselineVM struct {
	viewdata.BaseVM

	Anthro   []Measure
	FilledBy string
	Measured string
	Lung     []Measure

	Meals     []healthdata.MealEntry
	PerDay    []healthdata.DayCount
	PerOutlet []healthdata.OutletCount
	TotalDays int

	NoData  bool
	Error   string
	RetryTo string
}

func anthroCards(a *healthdata.Anthro) []Measure {
	if a == nil {
		return nil
	}
	out := make([]Measure, 0, len(a.Measures))
	for _, m := range a.Measures {
		out = append(out, Measure{Label: m.Label, Unit: m.Unit, Value: cell(m.Value)})
	}
	return out
}

func lungCards(lung []healthdata.LungMetric) []Measure {
	out := make([]Measure, 0, len(lung))
	for _, l := range lung {
		out = append(out, Measure{
			Label: l.Label,
			Unit:  l.Unit,
			Value: cell(l.Mean),
			Min:   cell(l.Min),
			Max:   cell(l.Max),
		})
	}
	return out
}

func (h *Handler) showBaseline(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	vm := BaselineVM{BaseVM: viewdata.NewBaseVM(r, "Baseline Overview", "/dashboard")}

	p, err := h.fetch(r, user)
	if err != nil {
		if h.upstream.Expired(w, r, err) {
			return
		}
		vm.Error = h.upstream.Message(r, "failed to load baseline data", err)
		vm.RetryTo = vm.CurrentPath
		templates.Render(w, r, "dashboard/baseline", vm)
		return
	}

	b := healthdata.BuildBaseline(p, h.opts)
	vm.Anthro = anthroCards(b.Anthro)
	if b.Anthro != nil {
		vm.FilledBy = b.Anthro.FilledBy
		vm.Measured = b.Anthro.Date
	}
	vm.Lung = lungCards(b.Lung)
	vm.Meals = b.Meals.Entries
	vm.PerDay = b.Meals.PerDay
	vm.PerOutlet = b.Meals.PerOutlet
	vm.TotalDays = len(b.Days)
	vm.NoData = b.Anthro == nil && len(b.Lung) == 0 && len(b.Meals.Entries) == 0

	templates.Render(w, r, "dashboard/baseline", vm)
}
