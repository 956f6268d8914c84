// internal/domain/healthdata/datemap.go
package healthdata

import (
	"fmt"
	"sort"
)

// DayInfo describes one calendar date in the participant's study window.
type DayInfo struct {
	Date          string `json:"date"`
	DayNumber     int    `json:"dayNumber"`
	DayLabel      string `json:"dayLabel"`
	FormattedDate string `json:"formattedDate"`
}

// DateMapping assigns a stable "Day N" index to every date present in a payload.
type DateMapping struct {
	Days  []DayInfo `json:"days"`
	index map[string]int
}

// BuildDateMapping collects the distinct YYYY-MM-DD keys from every category,
// sorts them ascending and numbers them from 1. Records dated only through an
// alias field (meals exported with date_str and similar) are included.
func BuildDateMapping(p *Payload) DateMapping {
	seen := make(map[string]struct{})
	for _, s := range p.Categories() {
		for _, rec := range s.Records() {
			if key, ok := rec.DateKey(); ok {
				seen[key] = struct{}{}
			}
		}
	}
	return newDateMapping(seen)
}

func newDateMapping(seen map[string]struct{}) DateMapping {
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := DateMapping{
		Days:  make([]DayInfo, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		m.Days[i] = DayInfo{
			Date:          k,
			DayNumber:     i + 1,
			DayLabel:      dayLabel(i + 1),
			FormattedDate: formatShortDate(k),
		}
		m.index[k] = i
	}
	return m
}

func dayLabel(n int) string {
	return fmt.Sprintf("Day %d", n)
}

// TotalDays returns how many distinct dates were found.
func (m DateMapping) TotalDays() int {
	return len(m.Days)
}

// Lookup returns the day info for a date. Full timestamps are accepted;
// only their first 10 characters are used.
func (m DateMapping) Lookup(date string) (DayInfo, bool) {
	key, ok := dateKey(date)
	if !ok || m.index == nil {
		return DayInfo{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return DayInfo{}, false
	}
	return m.Days[i], true
}

// Dates returns the sorted date keys.
func (m DateMapping) Dates() []string {
	out := make([]string, len(m.Days))
	for i, d := range m.Days {
		out[i] = d.Date
	}
	return out
}
