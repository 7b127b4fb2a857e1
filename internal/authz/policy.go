// Package authz is the single authorization policy consulted by both
// services: every role check goes through Authorize rather than ad-hoc
// branching in handlers.
package authz

import "modhub/internal/models"

type Capability int

const (
	// CapSubmitMod: create a mod submission. Any authenticated user.
	CapSubmitMod Capability = iota
	// CapModerate: change moderation status and list non-approved mods.
	CapModerate
)

type Verdict int

const (
	Granted Verdict = iota
	// DeniedUnauthenticated: no identity was resolved (401).
	DeniedUnauthenticated
	// DeniedForbidden: identity is known but the role is insufficient (403).
	DeniedForbidden
)

// Authorize evaluates a capability for an identity. A nil user is the
// anonymous caller.
func Authorize(user *models.User, cap Capability) Verdict {
	if user == nil {
		return DeniedUnauthenticated
	}
	switch cap {
	case CapSubmitMod:
		return Granted
	case CapModerate:
		if user.Role == models.RoleModerator || user.Role == models.RoleAdmin {
			return Granted
		}
		return DeniedForbidden
	default:
		return DeniedForbidden
	}
}
