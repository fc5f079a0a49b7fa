package domain

import (
	"fmt"
	"sync"
)

// CapacityLedger is the authoritative per-event record of issued tickets.
// All issuance goes through Reserve; nothing else may grow the issued set.
type CapacityLedger struct {
	mu        sync.Mutex
	eventID   string
	capacity  int
	seq       int
	issued    map[string]struct{}
	corrupted bool
}

func NewCapacityLedger(eventID string, capacity int) *CapacityLedger {
	return &CapacityLedger{
		eventID:  eventID,
		capacity: capacity,
		issued:   make(map[string]struct{}),
	}
}

// RestoreCapacityLedger rebuilds a ledger from persisted counters. A persisted
// issued set larger than capacity marks the ledger corrupted, which halts
// further reservations for the event until it is manually reconciled.
func RestoreCapacityLedger(eventID string, capacity, seq int, issuedTicketIDs []string) *CapacityLedger {
	l := NewCapacityLedger(eventID, capacity)
	l.seq = seq
	for _, id := range issuedTicketIDs {
		l.issued[id] = struct{}{}
	}
	if len(l.issued) > capacity {
		l.corrupted = true
	}
	return l
}

// Reserve grants count ticket slots atomically: either all ids are allocated
// and the issued count grows by count, or nothing changes.
func (l *CapacityLedger) Reserve(count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("reserve count must be positive, got %d", count)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.corrupted || len(l.issued) > l.capacity {
		l.corrupted = true
		return nil, ErrLedgerCorrupted
	}

	if len(l.issued)+count > l.capacity {
		return nil, ErrCapacityExceeded
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		l.seq++
		id := fmt.Sprintf("TKT-%s-%d", l.eventID, l.seq)
		l.issued[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}

// Release returns slots for the given ticket ids. Ids that were never issued
// or were already released are skipped, so duplicate cancellation signals are
// harmless. It reports how many slots were actually freed.
func (l *CapacityLedger) Release(ticketIDs []string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	released := 0
	for _, id := range ticketIDs {
		if _, ok := l.issued[id]; ok {
			delete(l.issued, id)
			released++
		}
	}

	return released
}

func (l *CapacityLedger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.capacity - len(l.issued)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (l *CapacityLedger) IssuedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.issued)
}

func (l *CapacityLedger) Capacity() int {
	return l.capacity
}

// LedgerState is a point-in-time copy of the ledger counters, persisted
// together with the booking rows they account for.
type LedgerState struct {
	EventID         string
	Capacity        int
	IssuedCount     int
	Sequence        int
	IssuedTicketIDs []string
}

func (l *CapacityLedger) Snapshot() LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.issued))
	for id := range l.issued {
		ids = append(ids, id)
	}

	return LedgerState{
		EventID:         l.eventID,
		Capacity:        l.capacity,
		IssuedCount:     len(l.issued),
		Sequence:        l.seq,
		IssuedTicketIDs: ids,
	}
}
