// internal/domain/models/loginhistory.go
package models

import "time"

// LoginRecord captures a single successful login event.
// CreatedAt is indexed for recent-activity views.
type LoginRecord struct {
	Username  string    `bson:"username"`
	Role      string    `bson:"role,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	IP        string    `bson:"ip"`
	UserAgent string    `bson:"user_agent,omitempty"`
}
