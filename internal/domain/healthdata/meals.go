// internal/domain/healthdata/meals.go
package healthdata

import (
	"sort"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/htmlsanitize"
)

// Field aliases seen in meal exports.
var (
	mealTimeAliases   = []string{"time_str", "timeString", "time"}
	mealDishAliases   = []string{"dish", "item", "name", "meal", "description"}
	mealOutletAliases = []string{"outlet", "outlet_name", "location"}
)

const (
	defaultDish   = "Meal"
	defaultOutlet = "Unknown"
)

// MealEntry is one meal placed on the timeline.
type MealEntry struct {
	Date      string    `json:"date"`
	Day       string    `json:"day"`
	DayNumber int       `json:"dayNumber"`
	Hour      float64   `json:"time"`
	TimeLabel string    `json:"timeLabel"`
	Dish      string    `json:"dish"`
	Outlet    string    `json:"outlet"`
	At        time.Time `json:"-"`
}

// DayCount is the number of meals logged on one date.
type DayCount struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// OutletCount is the number of meals bought at one outlet.
type OutletCount struct {
	Outlet string `json:"outlet"`
	Count  int    `json:"count"`
}

// MealSummary is the meal timeline plus its aggregates.
type MealSummary struct {
	Entries   []MealEntry   `json:"entries"`
	PerDay    []DayCount    `json:"perDay"`
	PerOutlet []OutletCount `json:"perOutlet"`
}

// resolveMealTime applies the timestamp fallback chain:
// a full "date" timestamp, then a date alias joined with a time alias,
// then the date alias alone at noon.
func resolveMealTime(rec Record, loc *time.Location) (time.Time, bool) {
	if t, ok := parseTimestamp(rec.Date(), loc); ok {
		return t, true
	}
	day := rec.FirstText(dateAliases...)
	if day == "" {
		return time.Time{}, false
	}
	if clock := rec.FirstText(mealTimeAliases...); clock != "" {
		if t, ok := parseDayAndClock(day, clock, loc); ok {
			return t, true
		}
	}
	d, ok := parseDay(day, loc)
	if !ok {
		return time.Time{}, false
	}
	return d.Add(12 * time.Hour), true
}

// mealEntries resolves every meal record, dropping those without a usable
// timestamp, ordered by date and then by original position.
func mealEntries(p *Payload, m DateMapping, loc *time.Location) []MealEntry {
	if p == nil {
		return nil
	}
	recs := p.Meals.Records()
	out := make([]MealEntry, 0, len(recs))
	for _, rec := range recs {
		at, ok := resolveMealTime(rec, loc)
		if !ok {
			continue
		}
		key := at.Format(dayLayout)
		e := MealEntry{
			Date:      key,
			Hour:      float64(at.Hour()) + float64(at.Minute())/60,
			TimeLabel: at.Format("15:04"),
			Dish:      htmlsanitize.Label(rec.FirstText(mealDishAliases...), defaultDish),
			Outlet:    htmlsanitize.Label(rec.FirstText(mealOutletAliases...), defaultOutlet),
			At:        at,
		}
		if info, ok := m.Lookup(key); ok {
			e.Day = info.DayLabel
			e.DayNumber = info.DayNumber
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// AggregateMeals builds the meal timeline, meals per day and meals per outlet.
// Outlets are ordered by count descending, then by name.
func AggregateMeals(p *Payload, m DateMapping, opts Options) MealSummary {
	opts = opts.withDefaults()
	entries := mealEntries(p, m, opts.Location)
	if entries == nil {
		entries = []MealEntry{}
	}

	sum := MealSummary{
		Entries:   entries,
		PerDay:    []DayCount{},
		PerOutlet: []OutletCount{},
	}

	byOutlet := make(map[string]int)
	for _, e := range entries {
		if n := len(sum.PerDay); n > 0 && sum.PerDay[n-1].Date == e.Date {
			sum.PerDay[n-1].Count++
		} else {
			sum.PerDay = append(sum.PerDay, DayCount{Date: e.Date, Day: e.Day, Count: 1})
		}
		byOutlet[e.Outlet]++
	}

	for name, n := range byOutlet {
		sum.PerOutlet = append(sum.PerOutlet, OutletCount{Outlet: name, Count: n})
	}
	sort.Slice(sum.PerOutlet, func(i, j int) bool {
		a, b := sum.PerOutlet[i], sum.PerOutlet[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Outlet < b.Outlet
	})
	return sum
}
