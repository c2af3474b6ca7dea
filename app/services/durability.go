package services

import (
	"sync"
	"time"

	"firsttime/app/observability"
)

// DurabilityStatus is the transient save indicator. It never affects the
// canonical collection.
type DurabilityStatus string

const (
	DurabilityIdle   DurabilityStatus = "idle"
	DurabilitySaving DurabilityStatus = "saving"
	DurabilitySaved  DurabilityStatus = "saved"
	DurabilityFailed DurabilityStatus = "failed"
)

// DurabilityReport is a point-in-time view of the durability channel.
type DurabilityReport struct {
	Adapter     string           `json:"adapter"`
	Status      DurabilityStatus `json:"status"`
	InFlight    int              `json:"inFlight"`
	LastError   string           `json:"lastError,omitempty"`
	LastErrorAt *time.Time       `json:"lastErrorAt,omitempty"`
	LastSavedAt *time.Time       `json:"lastSavedAt,omitempty"`
}

// Durability tracks persistence outcomes separately from store state.
type Durability struct {
	mutex       sync.Mutex
	adapter     string
	clock       func() time.Time
	inFlight    int
	last        DurabilityStatus
	lastErr     string
	lastErrAt   time.Time
	lastSavedAt time.Time
}

func newDurability(adapter string, clock func() time.Time) *Durability {
	return &Durability{adapter: adapter, clock: clock, last: DurabilityIdle}
}

func (d *Durability) begin() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.inFlight++
	observability.PersistenceInFlight.Inc()
}

func (d *Durability) end(err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.inFlight--
	observability.PersistenceInFlight.Dec()

	if err != nil {
		d.last = DurabilityFailed
		d.lastErr = err.Error()
		d.lastErrAt = d.clock()
		observability.PersistenceWrites.WithLabelValues(d.adapter, "failed").Inc()
		return
	}
	d.last = DurabilitySaved
	d.lastSavedAt = d.clock()
	observability.PersistenceWrites.WithLabelValues(d.adapter, "saved").Inc()
}

// Report returns the current durability state. Status is "saving" while any
// write is in flight, otherwise the outcome of the latest settled write.
func (d *Durability) Report() DurabilityReport {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	r := DurabilityReport{
		Adapter:   d.adapter,
		Status:    d.last,
		InFlight:  d.inFlight,
		LastError: d.lastErr,
	}
	if d.inFlight > 0 {
		r.Status = DurabilitySaving
	}
	if !d.lastErrAt.IsZero() {
		t := d.lastErrAt
		r.LastErrorAt = &t
	}
	if !d.lastSavedAt.IsZero() {
		t := d.lastSavedAt
		r.LastSavedAt = &t
	}
	return r
}
