// Package ops implements the operation coordinator: bookkeeping for
// in-flight mutating and navigating actions, edge-triggered activity
// notifications, and the latest-wins single-lane queue.
package ops

import (
	"sort"
	"sync"
	"time"

	"notenav/internal/log"
)

// Kind is one of the closed set of tracked action categories.
type Kind int

const (
	KindMoveFiles Kind = iota
	KindDeleteFiles
	KindOpenFolderNote
	KindOpenVersionHistory
	KindOpenInNewContext
	KindOpenActiveFile
	KindOpenHomepage
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindMoveFiles:
		return "move-files"
	case KindDeleteFiles:
		return "delete-files"
	case KindOpenFolderNote:
		return "open-folder-note"
	case KindOpenVersionHistory:
		return "open-version-history"
	case KindOpenInNewContext:
		return "open-in-new-context"
	case KindOpenActiveFile:
		return "open-active-file"
	case KindOpenHomepage:
		return "open-homepage"
	}
	return "unknown"
}

// Operation is one in-flight action held in the active table.
type Operation struct {
	ID      uint64
	Kind    Kind
	Started time.Time
	Payload interface{}
}

// Listener observes per-kind activity edges: active fires on the 0→1
// transition of a kind's count, inactive on 1→0.
type Listener func(kind Kind, active bool)

// Coordinator tracks in-flight operations. The per-kind counts that gate
// notifications are kept separately from the active table so coarse
// activity checks stay cheap.
type Coordinator struct {
	mu           sync.Mutex
	nextID       uint64
	active       map[uint64]*Operation
	counts       map[Kind]int
	listeners    map[int]Listener
	nextListener int
	lanes        map[Kind]*lane
	closed       bool
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		active:    make(map[uint64]*Operation),
		counts:    make(map[Kind]int),
		listeners: make(map[int]Listener),
		lanes:     make(map[Kind]*lane),
	}
}

// Begin registers an operation and returns its id. The kind's count is
// incremented; crossing 0→1 fires the active edge.
func (c *Coordinator) Begin(kind Kind, payload interface{}) uint64 {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.active[id] = &Operation{ID: id, Kind: kind, Started: time.Now(), Payload: payload}
	c.counts[kind]++
	edge := c.counts[kind] == 1
	var fns []Listener
	if edge {
		fns = c.snapshotListeners()
	}
	c.mu.Unlock()

	if edge {
		log.Debug("operation kind %s became active", kind)
		c.dispatch(fns, kind, true)
	}
	return id
}

// End removes an operation. Callers must invoke End on every exit path
// of the wrapped work; unknown ids are ignored so double release is
// harmless. Crossing 1→0 fires the inactive edge.
func (c *Coordinator) End(id uint64) {
	c.mu.Lock()
	op, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.active, id)
	c.counts[op.Kind]--
	edge := c.counts[op.Kind] == 0
	if edge {
		delete(c.counts, op.Kind)
	}
	var fns []Listener
	if edge {
		fns = c.snapshotListeners()
	}
	kind := op.Kind
	c.mu.Unlock()

	if edge {
		log.Debug("operation kind %s became inactive", kind)
		c.dispatch(fns, kind, false)
	}
}

// IsActive reports whether any operation of the kind is in flight.
func (c *Coordinator) IsActive(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[kind] > 0
}

// IsActiveWhere reports whether an operation of the kind with a payload
// matching the predicate is in flight.
func (c *Coordinator) IsActiveWhere(kind Kind, pred func(payload interface{}) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, op := range c.active {
		if op.Kind == kind && pred(op.Payload) {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of in-flight operations of the kind.
func (c *Coordinator) ActiveCount(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[kind]
}

// Subscribe registers an activity listener and returns its unsubscribe
// closure. Listeners are invoked synchronously on the triggering call; a
// panicking listener is recovered and logged, never propagated.
func (c *Coordinator) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close stops the lane workers. Pending lane tasks settle as superseded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	lanes := make([]*lane, 0, len(c.lanes))
	for _, l := range c.lanes {
		lanes = append(lanes, l)
	}
	c.mu.Unlock()

	for _, l := range lanes {
		l.close()
	}
}

// snapshotListeners must be called with c.mu held. Registration order is
// preserved so notification order is deterministic.
func (c *Coordinator) snapshotListeners() []Listener {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	return fns
}

func (c *Coordinator) dispatch(fns []Listener, kind Kind, active bool) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.With(log.F("kind", kind.String()), log.F("panic", r)).
						Error("operation listener panicked")
				}
			}()
			fn(kind, active)
		}()
	}
}
