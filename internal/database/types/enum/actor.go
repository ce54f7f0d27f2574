package enum

// ActorRole represents the role asserted for a caller by the authentication gateway.
//
//go:generate go tool enumer -type=ActorRole -trimprefix=ActorRole -transform=snake-upper -text
type ActorRole int

const (
	// ActorRoleCitizen is a regular community member.
	ActorRoleCitizen ActorRole = iota
	// ActorRoleAuthority is a government institution allowed to resolve alerts.
	ActorRoleAuthority
)
