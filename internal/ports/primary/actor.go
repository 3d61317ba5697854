// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which transports drive the work core.
package primary

import (
	"strings"

	"github.com/example/workhub/internal/apperr"
)

// Roles with workspace-wide administrative rights.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Actor is the already-authenticated caller of every operation.
// Its WorkspaceID scopes every lookup; workspace ids inside payloads are never trusted.
type Actor struct {
	UserID      string
	Role        string
	WorkspaceID string
}

// IsAdmin reports whether the actor bypasses ownership rules.
func (a Actor) IsAdmin() bool {
	role := strings.ToLower(a.Role)
	return role == RoleAdmin || role == RoleOwner
}

// Validate rejects actors that cannot be scoped.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return apperr.Validation("actor user id is required")
	}
	if strings.TrimSpace(a.WorkspaceID) == "" {
		return apperr.Validation("actor workspace id is required")
	}
	return nil
}
