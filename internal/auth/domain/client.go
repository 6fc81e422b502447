package domain

import "time"

// ClientStatus is the lifecycle state of a machine client. Clients are never
// hard-deleted; decommissioning is a status flip so token rows keep a valid
// owner for auditing.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientSuspended ClientStatus = "suspended"
	ClientRevoked   ClientStatus = "revoked"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientSuspended, ClientRevoked:
		return true
	}
	return false
}

// Client represents a registered external machine client.
type Client struct {
	ID         string
	Name       string
	SecretHash string // argon2 encoded, never exposed
	Scopes     []string
	Status     ClientStatus
	RateLimit  int // advisory requests-per-hour, not enforced per client
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
