package frontier

import "errors"

var (
	// ErrEmpty is returned by PeekMin and PopMin on an empty queue.
	ErrEmpty = errors.New("frontier: queue is empty")

	// ErrInvalidHandle is returned when a handle whose entry already left the
	// queue (or that never belonged to it) is used.
	ErrInvalidHandle = errors.New("frontier: invalid handle")
)

// Entry is a prioritized value. Lower priorities are served first.
type Entry[T any] struct {
	Priority float64
	Value    T
}

// Queue is a min-heap that supports changing and removing arbitrary entries.
type Queue[T any] interface {
	// Insert adds an entry and returns the handle that tracks it.
	Insert(entry Entry[T]) Handle[T]

	// PeekMin returns the minimum entry without removing it.
	PeekMin() (Entry[T], error)

	// PopMin removes and returns the minimum entry. Its handle becomes invalid.
	PopMin() (Entry[T], error)

	// Update replaces the entry tracked by h. The handle stays valid.
	Update(h Handle[T], entry Entry[T]) error

	// Erase removes the entry tracked by h. The handle becomes invalid.
	Erase(h Handle[T]) error

	// Len returns the number of entries.
	Len() int

	// Empty reports whether the queue holds no entries.
	Empty() bool

	// Entries returns a snapshot of all entries in no particular order.
	Entries() []Entry[T]
}

// Handle identifies one entry of a Queue. The zero Handle is never valid.
type Handle[T any] struct {
	n *node[T]
}

// Valid reports whether the handle still refers to an entry in a queue.
func (h Handle[T]) Valid() bool {
	return h.n != nil && h.n.owner != nil
}

// Entry returns the entry the handle refers to.
func (h Handle[T]) Entry() (Entry[T], error) {
	if !h.Valid() {
		return Entry[T]{}, ErrInvalidHandle
	}
	return h.n.entry, nil
}
