// internal/domain/healthdata/sleep.go
package healthdata

import "math"

// SleepHeuristic places a night's total sleep onto clock hours.
//
// Upstream data carries only per-day totals, so hours are assigned starting at
// StartHour, wrapping past midnight, and never at or past WakeHour.
type SleepHeuristic struct {
	StartHour int
	WakeHour  int
}

// Hours returns the clock hours marked asleep for totalMinutes of sleep.
// All hours belong to the date the total was recorded on.
func (h SleepHeuristic) Hours(totalMinutes float64) map[int]bool {
	out := make(map[int]bool)
	if totalMinutes <= 0 || math.IsNaN(totalMinutes) {
		return out
	}
	n := int(math.Floor(totalMinutes / 60))
	if n > 24 {
		n = 24
	}
	hour := h.StartHour
	for i := 0; i < n; i++ {
		if i > 0 && hour == h.WakeHour {
			break
		}
		out[hour] = true
		hour = (hour + 1) % 24
	}
	return out
}

// sleepByDate returns each date's total sleep minutes, last record winning.
func sleepByDate(p *Payload) map[string]float64 {
	out := make(map[string]float64)
	if p == nil {
		return out
	}
	for _, rec := range p.Sleep.Records() {
		key, ok := dateKey(rec.Date())
		if !ok {
			continue
		}
		for _, k := range []string{"totalSleep", "total_sleep_minutes"} {
			if v, ok := rec.Number(k); ok {
				out[key] = v
				break
			}
		}
	}
	return out
}

// SleepSlice is one segment of the sleep stage breakdown.
type SleepSlice struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Minutes float64 `json:"value"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
}

var sleepStages = []struct {
	key, name, color string
}{
	{"deepSleep", "Deep Sleep", "#4FD1C5"},
	{"remSleep", "REM Sleep", "#F687B3"},
	{"lightSleep", "Light Sleep", "#F6E05E"},
	{"almostAwake", "Almost Awake", "#CBD5E0"},
}

// SleepBreakdown totals each sleep stage across rows and returns the
// non-empty stages with their share of the combined total.
func SleepBreakdown(rows []DailyRow) []SleepSlice {
	out := make([]SleepSlice, 0, len(sleepStages))
	var total float64
	for _, st := range sleepStages {
		var sum float64
		for _, r := range rows {
			if v := r.Value(st.key); v != nil {
				sum += *v
			}
		}
		if sum <= 0 {
			continue
		}
		total += sum
		out = append(out, SleepSlice{Key: st.key, Name: st.name, Minutes: sum, Color: st.color})
	}
	for i := range out {
		out[i].Percent = math.Round(out[i].Minutes/total*1000) / 10
	}
	return out
}
