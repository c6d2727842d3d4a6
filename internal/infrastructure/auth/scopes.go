// Package auth implements bearer token issuance and validation for the
// VTN: internal client-credentials OAuth, multi-algorithm JWT checks
// against a remote JWKS, and the scope model gating every endpoint.
package auth

import (
	"strings"

	"openadr/internal/shared/logger"
)

// Scope is one space-delimited entry of the JWT scope claim.
type Scope string

const (
	// ScopeReadAll reads every object without target filtering.
	ScopeReadAll Scope = "read_all"
	// ScopeReadTargets reads programs and events filtered by the
	// caller's privacy target set.
	ScopeReadTargets Scope = "read_targets"
	// ScopeReadVenObjects reads reports, vens, resources and
	// subscriptions owned by the caller.
	ScopeReadVenObjects Scope = "read_ven_objects"

	ScopeWritePrograms      Scope = "write_programs"
	ScopeWriteEvents        Scope = "write_events"
	ScopeWriteReports       Scope = "write_reports"
	ScopeWriteSubscriptions Scope = "write_subscriptions"
	ScopeWriteVens          Scope = "write_vens"
)

var knownScopes = map[Scope]bool{
	ScopeReadAll:            true,
	ScopeReadTargets:        true,
	ScopeReadVenObjects:     true,
	ScopeWritePrograms:      true,
	ScopeWriteEvents:        true,
	ScopeWriteReports:       true,
	ScopeWriteSubscriptions: true,
	ScopeWriteVens:          true,
}

// ParseScopes splits a space-delimited scope claim. Unknown scopes are
// logged and dropped rather than failing the token.
func ParseScopes(claim string, log logger.Interface) []Scope {
	fields := strings.Fields(claim)
	scopes := make([]Scope, 0, len(fields))
	for _, f := range fields {
		s := Scope(f)
		if !knownScopes[s] {
			if log != nil {
				log.Warnw("ignoring unknown scope in token", "scope", f)
			}
			continue
		}
		scopes = append(scopes, s)
	}
	return scopes
}

// JoinScopes renders scopes as a space-delimited claim value.
func JoinScopes(scopes []Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// Claims is the validated identity of a request: the client ID from the
// token subject plus its granted scopes.
type Claims struct {
	ClientID string
	Scopes   []Scope
}

// Has reports whether the claims carry the scope.
func (c *Claims) Has(scope Scope) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// CanReadAll reports unfiltered read access.
func (c *Claims) CanReadAll() bool {
	return c.Has(ScopeReadAll)
}

// CanReadTargets reports privacy-filtered program/event read access.
func (c *Claims) CanReadTargets() bool {
	return c.Has(ScopeReadAll) || c.Has(ScopeReadTargets)
}

// CanReadVenObjects reports access to VEN-owned objects.
func (c *Claims) CanReadVenObjects() bool {
	return c.Has(ScopeReadAll) || c.Has(ScopeReadVenObjects)
}

// CanRead reports whether any read scope is present.
func (c *Claims) CanRead() bool {
	return c.CanReadTargets() || c.Has(ScopeReadVenObjects)
}

// IsBusinessLogic reports whether the caller acts as business logic
// rather than as a VEN. BL callers see everything and may submit BL_*
// request variants.
func (c *Claims) IsBusinessLogic() bool {
	return c.Has(ScopeReadAll)
}
