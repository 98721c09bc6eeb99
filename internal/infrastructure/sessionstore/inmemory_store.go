package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

// sessionKey identifies one session: a tenant runs at most one scan session
// per inventory count
type sessionKey struct {
	tenantID    uuid.UUID
	inventoryID uuid.UUID
}

// entry pairs a session with its own mutex so concurrent requests for the
// same inventory serialize without blocking other sessions
type entry struct {
	mu      sync.Mutex
	session *scanning.ScanSession
}

// InMemoryStore keeps active scan sessions in process memory. Sessions are
// working state, not records: the inventory service owns everything committed,
// so losing the store on restart loses only uncommitted batch buffers.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*entry

	idleExpiration time.Duration
	sweepInterval  time.Duration
	logger         *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore(idleExpiration, sweepInterval time.Duration, logger *zap.Logger) *InMemoryStore {
	return &InMemoryStore{
		sessions:       make(map[sessionKey]*entry),
		idleExpiration: idleExpiration,
		sweepInterval:  sweepInterval,
		logger:         logger,
		stop:           make(chan struct{}),
	}
}

// Save stores a session, replacing any existing session for the same inventory
func (s *InMemoryStore) Save(session *scanning.ScanSession) {
	key := sessionKey{tenantID: session.TenantID, inventoryID: session.InventoryID}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = &entry{session: session}
}

// Find returns the session for an inventory count, or ErrNotFound
func (s *InMemoryStore) Find(tenantID, inventoryID uuid.UUID) (*scanning.ScanSession, error) {
	key := sessionKey{tenantID: tenantID, inventoryID: inventoryID}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e.session, nil
}

// Update runs fn with the session's entry lock held, serializing concurrent
// mutations of the same session
func (s *InMemoryStore) Update(tenantID, inventoryID uuid.UUID, fn func(*scanning.ScanSession) error) error {
	key := sessionKey{tenantID: tenantID, inventoryID: inventoryID}

	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return shared.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Delete removes a session. Returns ErrNotFound when no session exists.
func (s *InMemoryStore) Delete(tenantID, inventoryID uuid.UUID) (*scanning.ScanSession, error) {
	key := sessionKey{tenantID: tenantID, inventoryID: inventoryID}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	delete(s.sessions, key)
	return e.session, nil
}

// Count returns the number of active sessions
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Start launches the background janitor that evicts idle sessions
func (s *InMemoryStore) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		s.logger.Info("session janitor started",
			zap.Duration("idle_expiration", s.idleExpiration),
			zap.Duration("sweep_interval", s.sweepInterval),
		)

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop shuts down the janitor and waits for the current sweep to finish
func (s *InMemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

// Ensure InMemoryStore implements SessionStore
var _ scanning.SessionStore = (*InMemoryStore)(nil)

// sweep evicts sessions that have been idle longer than the expiration
func (s *InMemoryStore) sweep() {
	cutoff := time.Now().Add(-s.idleExpiration)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.sessions {
		if e.session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, key)
			s.logger.Info("evicted idle scan session",
				zap.String("tenant_id", key.tenantID.String()),
				zap.String("inventory_id", key.inventoryID.String()),
				zap.Int("buffered_items", e.session.ItemCount()),
			)
		}
	}
}
