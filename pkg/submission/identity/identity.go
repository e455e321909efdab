// Package identity extracts caller claims from the bearer token attached
// by the edge. The token was already validated by the gateway authorizer,
// so the claims are trusted verbatim and no signature verification is
// performed here.
package identity

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tendant/submission-intake/pkg/submission"
)

// GroupsClaim is the token claim carrying group memberships. Depending on
// the authorizer it may arrive as a list or as a single delimited string.
const GroupsClaim = "cognito:groups"

// Provider derives per-request identity claims.
type Provider struct {
	parser *jwt.Parser
}

// NewProvider creates a claims provider.
func NewProvider() *Provider {
	return &Provider{parser: jwt.NewParser()}
}

// FromRequest extracts claims from the Authorization header. A missing or
// unparseable token yields empty claims, not an error: anonymous uploads
// are legitimate, and the read path enforces identification itself.
func (p *Provider) FromRequest(r *http.Request) submission.Claims {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return submission.Claims{}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return submission.Claims{}
	}

	return p.FromToken(parts[1])
}

// FromToken extracts claims from a raw JWT string.
func (p *Provider) FromToken(tokenString string) submission.Claims {
	claims := jwt.MapClaims{}
	if _, _, err := p.parser.ParseUnverified(tokenString, claims); err != nil {
		return submission.Claims{}
	}

	result := submission.Claims{}
	if sub, ok := claims["sub"].(string); ok {
		result.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		result.Email = email
	}
	result.Groups = groupsString(claims[GroupsClaim])

	return result
}

// groupsString flattens the groups claim into the delimited string form
// the access engine normalizes.
func groupsString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, g := range v {
			if s, ok := g.(string); ok {
				names = append(names, s)
			}
		}
		return strings.Join(names, ",")
	default:
		return ""
	}
}
