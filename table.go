package sctp

import (
	"sync"
	"time"
)

// associationTable is the mutex-guarded map from peer endpoint to
// per-peer association record described in spec.md §4.3. Records are
// always looked up by the remote address of a received datagram, never
// by verification tag.
type associationTable struct {
	mu           sync.Mutex
	associations map[AssociationKey]*Association
}

func newAssociationTable() *associationTable {
	return &associationTable{
		associations: make(map[AssociationKey]*Association),
	}
}

func (t *associationTable) get(key AssociationKey) (*Association, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.associations[key]

	return a, ok
}

// getOrCreateLocked returns the existing record for key, or creates a
// fresh one in CookieWait, per spec.md invariant 1 ("at most one
// association record per key; re-receipt of INIT from a peer already
// present is a no-op"). The bool return reports whether a new record was
// created. Caller must hold t.mu.
func (t *associationTable) getOrCreateLocked(key AssociationKey) (*Association, bool) {
	if a, ok := t.associations[key]; ok {
		return a, false
	}

	a := newAssociation(key, &t.mu)
	t.associations[key] = a

	return a, true
}

// getOrCreate is the locking wrapper around getOrCreateLocked for callers
// outside the event loop (e.g. Socket.Associate).
func (t *associationTable) getOrCreate(key AssociationKey) (*Association, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.getOrCreateLocked(key)
}

func (t *associationTable) all() []*Association {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Association, 0, len(t.associations))
	for _, a := range t.associations {
		out = append(out, a)
	}

	return out
}

// awaitEstablished blocks until the association at key reaches
// Established or timeout elapses. It replaces a 10ms poll loop with a
// condition variable signaled from Association.setState, per DESIGN.md's
// application of the "Polling await" redesign note, while keeping the
// same external contract: nil once Established, ErrTimeout otherwise
// (including when the association does not exist).
func (t *associationTable) awaitEstablished(key AssociationKey, timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.associations[key]
	if !ok {
		return ErrTimeout
	}

	deadline := time.Now().Add(timeout)

	for a.State != Established {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}

		condWaitTimeout(a.established, &t.mu, remaining)
	}

	return nil
}
