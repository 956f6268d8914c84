// internal/domain/models/preferences.go
package models

import "time"

// DashboardPreferences remembers the chart settings a user last picked.
// Keyed by username; one document per user.
type DashboardPreferences struct {
	Username        string    `bson:"username" json:"username"`
	SelectedMetrics []string  `bson:"selected_metrics" json:"selected_metrics"`
	ChartType       string    `bson:"chart_type" json:"chart_type"` // line, bar
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}
