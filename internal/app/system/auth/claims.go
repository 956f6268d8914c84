package auth

import (
	"strings"

	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the identity carried in a health API token.
type TokenClaims struct {
	Username string
	Role     string
}

// ParseTokenClaims reads the role and username from the token's payload
// segment. The signature is not verified: the health API checks it on every
// call, and the claims here only choose which pages to show.
// Tokens that are not JWTs yield empty claims.
func ParseTokenClaims(token string) TokenClaims {
	if strings.Count(token, ".") != 2 {
		return TokenClaims{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}
	}

	var out TokenClaims
	out.Role = normalize.Role(claimString(claims, "role"))
	if out.Role == "" {
		// Some issuers send a role list instead of a single role.
		if roles, ok := claims["roles"].([]any); ok {
			for _, r := range roles {
				if s, ok := r.(string); ok && normalize.Role(s) == "admin" {
					out.Role = "admin"
					break
				}
			}
		}
	}
	for _, k := range []string{"username", "preferred_username", "sub"} {
		if s := claimString(claims, k); s != "" {
			out.Username = s
			break
		}
	}
	return out
}

func claimString(c jwt.MapClaims, key string) string {
	if s, ok := c[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
