package ops

import (
	"sync"
	"testing"
	"time"

	"notenav/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct {
	kind   Kind
	active bool
}

func TestActivityEdgesCoalesce(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	var mu sync.Mutex
	var edges []edge
	unsub := c.Subscribe(func(kind Kind, active bool) {
		mu.Lock()
		edges = append(edges, edge{kind, active})
		mu.Unlock()
	})
	defer unsub()

	// Three overlapping moves: one active edge, one inactive edge.
	a := c.Begin(KindMoveFiles, nil)
	b := c.Begin(KindMoveFiles, nil)
	d := c.Begin(KindMoveFiles, nil)
	assert.True(t, c.IsActive(KindMoveFiles))
	assert.Equal(t, 3, c.ActiveCount(KindMoveFiles))

	c.End(a)
	c.End(b)
	assert.True(t, c.IsActive(KindMoveFiles))
	c.End(d)
	assert.False(t, c.IsActive(KindMoveFiles))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, edges, 2)
	assert.Equal(t, edge{KindMoveFiles, true}, edges[0])
	assert.Equal(t, edge{KindMoveFiles, false}, edges[1])
}

func TestEndUnknownIDIsHarmless(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	id := c.Begin(KindDeleteFiles, nil)
	c.End(id)
	c.End(id) // double release
	c.End(999)
	assert.False(t, c.IsActive(KindDeleteFiles))
}

func TestIsActiveWhere(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	id := c.Begin(KindOpenActiveFile, "/Inbox/A.md")
	defer c.End(id)

	assert.True(t, c.IsActiveWhere(KindOpenActiveFile, func(p interface{}) bool {
		return p == "/Inbox/A.md"
	}))
	assert.False(t, c.IsActiveWhere(KindOpenActiveFile, func(p interface{}) bool {
		return p == "/Inbox/B.md"
	}))
}

func TestPanickingListenerDoesNotCorruptBookkeeping(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	calls := 0
	c.Subscribe(func(Kind, bool) { panic("listener bug") })
	c.Subscribe(func(Kind, bool) { calls++ })

	id := c.Begin(KindMoveFiles, nil)
	c.End(id)

	// Later listener still ran for both edges, counts stayed sane.
	assert.Equal(t, 2, calls)
	assert.False(t, c.IsActive(KindMoveFiles))
}

func TestLatestWinsOnlyNewestRuns(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	// Hold the lane busy so A, B, C all queue before any executes.
	gate := make(chan struct{})
	blocker := c.SubmitLatestWins(KindOpenActiveFile, func() error {
		<-gate
		return nil
	})
	// Give the worker a moment to pick the blocker up.
	time.Sleep(10 * time.Millisecond)

	var mu sync.Mutex
	var ran []string
	submit := func(name string) <-chan error {
		return c.SubmitLatestWins(KindOpenActiveFile, func() error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return nil
		})
	}
	aCh := submit("A")
	bCh := submit("B")
	cCh := submit("C")
	close(gate)

	// Settlement arrives in submission order.
	blockerErr := <-blocker
	if !errors.IsSuperseded(blockerErr) {
		assert.NoError(t, blockerErr)
	}
	aErr := <-aCh
	bErr := <-bCh
	cErr := <-cCh

	assert.True(t, errors.IsSuperseded(aErr), "A should be skipped")
	assert.True(t, errors.IsSuperseded(bErr), "B should be skipped")
	assert.NoError(t, cErr, "C should run")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"C"}, ran)
}

func TestLatestWinsFailureDoesNotBlockLane(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	first := c.RunLatestWins(KindOpenActiveFile, func() error {
		return errors.New("open failed")
	})
	assert.Error(t, first)
	assert.False(t, errors.IsSuperseded(first))

	second := c.RunLatestWins(KindOpenActiveFile, func() error { return nil })
	assert.NoError(t, second)
}

func TestLatestWinsRecoversPanic(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	err := c.RunLatestWins(KindOpenActiveFile, func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// Lane still alive.
	assert.NoError(t, c.RunLatestWins(KindOpenActiveFile, func() error { return nil }))
}

func TestSubmitAfterCloseSettlesSkipped(t *testing.T) {
	c := NewCoordinator()
	c.Close()
	err := <-c.SubmitLatestWins(KindOpenActiveFile, func() error { return nil })
	assert.True(t, errors.IsSuperseded(err))
}

func TestUnsubscribeStopsEdges(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	count := 0
	unsub := c.Subscribe(func(Kind, bool) { count++ })

	id := c.Begin(KindMoveFiles, nil)
	c.End(id)
	assert.Equal(t, 2, count)

	unsub()
	id = c.Begin(KindMoveFiles, nil)
	c.End(id)
	assert.Equal(t, 2, count)
}
