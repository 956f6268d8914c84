// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - Username: what the participant types to log in; also the upstream session key
//   - ParticipantID: the study identifier the upstream maps a username to

// User is an account as reported by the upstream admin API.
// Accounts live in the health API; this service never stores them.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	ParticipantID string `json:"participant_id"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at"`
}

// User roles
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// ProtectedUsername cannot be deleted from the admin page.
const ProtectedUsername = "admin"

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleAdmin,
		RoleParticipant,
	}
}

// IsAdmin reports whether role grants access to the admin pages.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}
