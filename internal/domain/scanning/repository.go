package scanning

import (
	"github.com/google/uuid"
)

// SessionStore holds active scan sessions. A tenant has at most one session
// per inventory count.
type SessionStore interface {
	// Save stores a session, replacing any existing session for the same inventory
	Save(session *ScanSession)
	// Find returns the session for an inventory count, or shared.ErrNotFound
	Find(tenantID, inventoryID uuid.UUID) (*ScanSession, error)
	// Update runs fn with exclusive access to the session
	Update(tenantID, inventoryID uuid.UUID, fn func(*ScanSession) error) error
	// Delete removes a session and returns it, or shared.ErrNotFound
	Delete(tenantID, inventoryID uuid.UUID) (*ScanSession, error)
}
