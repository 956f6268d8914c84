// internal/app/features/dashboard/view.go
package dashboard

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
)

// Toggle is one sidebar metric checkbox.
type Toggle struct {
	healthdata.Parameter
	Selected bool
}

// StatCard is the min/max/avg/latest summary of one selected metric.
type StatCard struct {
	Label  string
	Unit   string
	Color  string
	Min    string
	Max    string
	Avg    string
	Latest string
	Count  int
}

// SleepSlice is one sleep stage in the breakdown legend.
type SleepSlice struct {
	Name    string
	Color   string
	Minutes string
	Percent string
}

// TableRow is one date (or hour) of a metric table; Cells follow Columns.
type TableRow struct {
	Date   string
	Label  string
	Sub    string
	Link   string
	Cells  []string
	Asleep bool
	Meals  []string
}

// DashboardVM is the view model for the chart area and the day drill-down.
type DashboardVM struct {
	viewdata.BaseVM

	Toggles   []Toggle
	Columns   []healthdata.Parameter
	Metrics   string // comma-separated selection for the chart script
	ChartType string

	Rows    []TableRow
	Stats   []StatCard
	Sleep   []SleepSlice
	NoData  bool
	Error   string
	RetryTo string

	// Day drill-down, set when ?date= is present.
	SelectedDate  string
	SelectedDay   string
	SelectedLabel string
	ClearTo       string
	Hourly        []TableRow
	NoHourly      bool
}

// formatValue renders a reading with at most one decimal.
func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func cell(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatValue(*v)
}

func toggles(selected []string) []Toggle {
	on := make(map[string]bool, len(selected))
	for _, k := range selected {
		on[k] = true
	}
	params := healthdata.Parameters()
	out := make([]Toggle, 0, len(params))
	for _, p := range params {
		out = append(out, Toggle{Parameter: p, Selected: on[p.Key]})
	}
	return out
}

func columns(selected []string) []healthdata.Parameter {
	out := make([]healthdata.Parameter, 0, len(selected))
	for _, k := range selected {
		if p, ok := healthdata.LookupParameter(k); ok {
			out = append(out, p)
		}
	}
	return out
}

// dashboardLink points back at the dashboard, keeping the metric and chart
// overrides from q. An empty date leaves the drill-down closed.
func dashboardLink(q url.Values, date string) string {
	v := url.Values{}
	for _, m := range q["metric"] {
		v.Add("metric", m)
	}
	if c := q.Get("chart"); c != "" {
		v.Set("chart", c)
	}
	if date != "" {
		v.Set("date", date)
	}
	if len(v) == 0 {
		return "/dashboard"
	}
	return "/dashboard?" + v.Encode()
}

func dailyRows(rows []healthdata.DailyRow, cols []healthdata.Parameter, q url.Values) []TableRow {
	out := make([]TableRow, 0, len(rows))
	for _, r := range rows {
		tr := TableRow{
			Date:  r.Date,
			Label: r.Day,
			Sub:   r.FormattedDate,
			Link:  dashboardLink(q, r.Date),
			Cells: make([]string, 0, len(cols)),
		}
		for _, c := range cols {
			tr.Cells = append(tr.Cells, cell(r.Value(c.Key)))
		}
		out = append(out, tr)
	}
	return out
}

func statCards(stats map[string]healthdata.Stats, cols []healthdata.Parameter) []StatCard {
	out := make([]StatCard, 0, len(cols))
	for _, c := range cols {
		s, ok := stats[c.Key]
		if !ok {
			continue
		}
		out = append(out, StatCard{
			Label:  c.Label,
			Unit:   c.Unit,
			Color:  c.Color,
			Min:    formatValue(s.Min),
			Max:    formatValue(s.Max),
			Avg:    formatValue(s.Avg),
			Latest: formatValue(s.Latest),
			Count:  s.Count,
		})
	}
	return out
}

// sleepSlices is empty unless sleep is one of the selected metrics.
func sleepSlices(slices []healthdata.SleepSlice, selected []string) []SleepSlice {
	if !contains(selected, healthdata.KeySleep) {
		return nil
	}
	out := make([]SleepSlice, 0, len(slices))
	for _, s := range slices {
		out = append(out, SleepSlice{
			Name:    s.Name,
			Color:   s.Color,
			Minutes: formatValue(s.Minutes),
			Percent: strconv.FormatFloat(s.Percent, 'f', 1, 64),
		})
	}
	return out
}

func hourlyRows(slots []healthdata.HourlySlot, cols []healthdata.Parameter) []TableRow {
	out := make([]TableRow, 0, len(slots))
	for _, s := range slots {
		tr := TableRow{
			Date:   s.Date,
			Label:  s.Time,
			Cells:  make([]string, 0, len(cols)),
			Asleep: s.Asleep,
			Meals:  s.Meals,
		}
		for _, c := range cols {
			tr.Cells = append(tr.Cells, cell(s.Value(c.Key)))
		}
		out = append(out, tr)
	}
	return out
}

// longDate formats YYYY-MM-DD as "Monday, January 15, 2024".
func longDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinKeys(keys []string) string {
	return strings.Join(keys, ",")
}
