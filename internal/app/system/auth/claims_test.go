package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated-signing-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestParseTokenClaims(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantUser string
		wantRole string
	}{
		{
			name:     "role and username",
			token:    signed(t, jwt.MapClaims{"username": "participant-1", "role": "Participant"}),
			wantUser: "participant-1",
			wantRole: "participant",
		},
		{
			name:     "admin in role list",
			token:    signed(t, jwt.MapClaims{"sub": "admin", "roles": []string{"staff", "admin"}}),
			wantUser: "admin",
			wantRole: "admin",
		},
		{
			name:     "opaque token",
			token:    "participant-1",
			wantUser: "",
			wantRole: "",
		},
		{
			name:     "three segments of garbage",
			token:    "abc.def.ghi",
			wantUser: "",
			wantRole: "",
		},
		{
			name:     "empty",
			token:    "",
			wantUser: "",
			wantRole: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTokenClaims(tt.token)
			if got.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", got.Username, tt.wantUser)
			}
			if got.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", got.Role, tt.wantRole)
			}
		})
	}
}
