package dto

import "slices"

// Control plane token scopes.
const (
	// ScopeControl allows lifecycle, message and push operations.
	ScopeControl = "edge:control"
	// ScopeRead allows status, cache and journal inspection.
	ScopeRead = "edge:read"
)

// Claims identifies the caller of a control plane endpoint.
type Claims struct {
	Subject string   `json:"sub"`
	Scopes  []string `json:"scopes"`
}

// HasScope reports whether the claims grant scope. ScopeControl implies ScopeRead.
func (c *Claims) HasScope(scope string) bool {
	if slices.Contains(c.Scopes, scope) {
		return true
	}
	return scope == ScopeRead && slices.Contains(c.Scopes, ScopeControl)
}
