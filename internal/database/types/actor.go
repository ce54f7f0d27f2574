package types

import (
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/google/uuid"
)

// Actor identifies the caller of an operation as asserted by the authentication gateway.
type Actor struct {
	ID   uuid.UUID
	Role enum.ActorRole
}

// IsAuthority checks if the actor acts on behalf of a government institution.
func (a Actor) IsAuthority() bool {
	return a.Role == enum.ActorRoleAuthority
}
