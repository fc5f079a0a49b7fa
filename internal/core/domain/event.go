package domain

import (
	"fmt"
	"time"
)

// Event is a scheduled, ticketed event with a fixed capacity. The capacity
// ledger it owns is the only authority on how many tickets exist for it.
type Event struct {
	ID       string
	Name     string
	Date     time.Time
	Location string
	Capacity int
	Ledger   *CapacityLedger
}

func NewEvent(id, name string, date time.Time, location string, capacity int) (*Event, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("event %s: capacity must be non-negative, got %d", id, capacity)
	}

	return &Event{
		ID:       id,
		Name:     name,
		Date:     date,
		Location: location,
		Capacity: capacity,
		Ledger:   NewCapacityLedger(id, capacity),
	}, nil
}
