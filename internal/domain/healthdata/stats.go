// internal/domain/healthdata/stats.go
package healthdata

// Stats summarizes one metric across the daily rows.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Latest float64 `json:"latest"`
	Count  int     `json:"count"`
}

// ComputeStats returns stats for key over rows. ok is false when no row has a value.
// Latest is the value of the last row (in date order) that has one.
func ComputeStats(rows []DailyRow, key string) (Stats, bool) {
	var s Stats
	var sum float64
	for _, r := range rows {
		v := r.Value(key)
		if v == nil {
			continue
		}
		if s.Count == 0 || *v < s.Min {
			s.Min = *v
		}
		if s.Count == 0 || *v > s.Max {
			s.Max = *v
		}
		sum += *v
		s.Latest = *v
		s.Count++
	}
	if s.Count == 0 {
		return Stats{}, false
	}
	s.Avg = sum / float64(s.Count)
	return s, true
}

// StatsFor computes stats for each key that has data.
func StatsFor(rows []DailyRow, keys []string) map[string]Stats {
	out := make(map[string]Stats, len(keys))
	for _, k := range keys {
		if s, ok := ComputeStats(rows, k); ok {
			out[k] = s
		}
	}
	return out
}
