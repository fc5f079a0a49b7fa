package domain_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceday/booking/internal/core/domain"
)

func TestCapacityLedger_ReserveAndRelease(t *testing.T) {
	ledger := domain.NewCapacityLedger("evt-1", 2)

	ids, err := ledger.Reserve(2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "TKT-evt-1-1", ids[0])
	assert.Equal(t, "TKT-evt-1-2", ids[1])
	assert.Equal(t, 0, ledger.Remaining())

	_, err = ledger.Reserve(1)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	ledger.Release(ids)
	assert.Equal(t, 2, ledger.Remaining())
}

func TestCapacityLedger_ReserveIsAtomic(t *testing.T) {
	ledger := domain.NewCapacityLedger("evt-1", 3)

	_, err := ledger.Reserve(2)
	require.NoError(t, err)

	// Requesting more than remaining grants nothing, not a partial batch.
	_, err = ledger.Reserve(2)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 1, ledger.Remaining())
	assert.Equal(t, 2, ledger.IssuedCount())
}

func TestCapacityLedger_ReleaseIsIdempotent(t *testing.T) {
	ledger := domain.NewCapacityLedger("evt-1", 5)

	ids, err := ledger.Reserve(3)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.Remaining())

	released := ledger.Release(ids)
	assert.Equal(t, 3, released)
	assert.Equal(t, 5, ledger.Remaining())

	released = ledger.Release(ids)
	assert.Equal(t, 0, released)
	assert.Equal(t, 5, ledger.Remaining())

	released = ledger.Release([]string{"TKT-evt-1-999"})
	assert.Equal(t, 0, released)
	assert.Equal(t, 5, ledger.Remaining())
}

func TestCapacityLedger_SequenceNeverRepeats(t *testing.T) {
	ledger := domain.NewCapacityLedger("evt-1", 2)

	first, err := ledger.Reserve(2)
	require.NoError(t, err)

	ledger.Release(first)

	second, err := ledger.Reserve(2)
	require.NoError(t, err)

	assert.NotEqual(t, first[0], second[0])
	assert.Equal(t, "TKT-evt-1-3", second[0])
	assert.Equal(t, "TKT-evt-1-4", second[1])
}

func TestCapacityLedger_RejectsNonPositiveCount(t *testing.T) {
	ledger := domain.NewCapacityLedger("evt-1", 2)

	_, err := ledger.Reserve(0)
	assert.Error(t, err)

	_, err = ledger.Reserve(-1)
	assert.Error(t, err)

	assert.Equal(t, 2, ledger.Remaining())
}

func TestCapacityLedger_NoOversellingUnderConcurrency(t *testing.T) {
	const capacity = 50

	ledger := domain.NewCapacityLedger("evt-1", capacity)

	// capacity+1 reservers of one slot each: exactly one must be rejected.
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	rejected := 0
	seen := make(map[string]bool)

	for i := 0; i < capacity+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ids, err := ledger.Reserve(1)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
				rejected++
				return
			}

			granted++
			for _, id := range ids {
				assert.False(t, seen[id], "duplicate ticket id %s", id)
				seen[id] = true
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, capacity, granted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, ledger.Remaining())
	assert.Equal(t, capacity, ledger.IssuedCount())
}

func TestCapacityLedger_ConcurrentMixedReserveRelease(t *testing.T) {
	const capacity = 20

	ledger := domain.NewCapacityLedger("evt-1", capacity)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ids, err := ledger.Reserve(2)
			if err != nil {
				return
			}
			ledger.Release(ids)
		}()
	}

	wg.Wait()

	issued := ledger.IssuedCount()
	assert.GreaterOrEqual(t, issued, 0)
	assert.LessOrEqual(t, issued, capacity)
	assert.Equal(t, capacity, ledger.Remaining())
}

func TestRestoreCapacityLedger_CorruptedStateHaltsReservations(t *testing.T) {
	issued := make([]string, 4)
	for i := range issued {
		issued[i] = fmt.Sprintf("TKT-evt-1-%d", i+1)
	}

	// Persisted state claims more issued tickets than the event's capacity.
	ledger := domain.RestoreCapacityLedger("evt-1", 3, 4, issued)

	_, err := ledger.Reserve(1)
	assert.ErrorIs(t, err, domain.ErrLedgerCorrupted)

	// Still corrupted on retry until manually reconciled.
	_, err = ledger.Reserve(1)
	assert.ErrorIs(t, err, domain.ErrLedgerCorrupted)
}

func TestRestoreCapacityLedger_ResumesSequence(t *testing.T) {
	ledger := domain.RestoreCapacityLedger("evt-1", 5, 3, []string{"TKT-evt-1-2", "TKT-evt-1-3"})

	assert.Equal(t, 2, ledger.IssuedCount())
	assert.Equal(t, 3, ledger.Remaining())

	ids, err := ledger.Reserve(1)
	require.NoError(t, err)
	assert.Equal(t, "TKT-evt-1-4", ids[0])
}
