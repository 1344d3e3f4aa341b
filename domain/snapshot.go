package domain

import "time"

type Provenance string

const (
	ProvenancePulled Provenance = "pulled"
	ProvenancePushed Provenance = "pushed"
)

// Snapshot holds the latest known full value of one state domain.
//
// Both channels deliver a complete view of the domain, so a snapshot is only
// ever replaced wholesale: the most recently arrived value wins, whatever its
// provenance. There are no server sequence numbers on the wire; arrival order
// is correct because the transport delivers per-topic messages in order.
type Snapshot[T any] struct {
	Payload    T
	Provenance Provenance
	ObservedAt time.Time
	Loading    bool
	Err        string
}

func (s *Snapshot[T]) Replace(payload T, provenance Provenance) {
	s.Payload = payload
	s.Provenance = provenance
	s.ObservedAt = time.Now()
	s.Loading = false
	s.Err = ""
}

// Fail records a pull error. The previous payload stays intact so consumers
// can keep rendering last-known-good data.
func (s *Snapshot[T]) Fail(err error) {
	s.Loading = false
	s.Err = err.Error()
}

// Clear resets the snapshot to its empty state.
func (s *Snapshot[T]) Clear() {
	var zero T
	s.Payload = zero
	s.Provenance = ""
	s.ObservedAt = time.Time{}
	s.Loading = false
	s.Err = ""
}

// Fresh reports whether the snapshot has ever observed a value.
func (s Snapshot[T]) Fresh() bool {
	return !s.ObservedAt.IsZero()
}
