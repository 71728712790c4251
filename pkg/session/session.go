// Package session tracks interactive drag gestures over a laid-out graph.
//
// A [Tracker] owns a copy of the graph and enforces the gesture state
// machine Idle → Dragging(node) → Idle: only one node can be dragged at a
// time. Every proposed position goes through the collision resolver before it
// is stored, so the tracked graph reflects what the presentation surface
// shows.
//
//	tr := session.NewTracker(g, collision.Resolver{})
//	gest, err := tr.Begin("wk1")
//	pos, err := tr.Move(graph.Position{X: 120, Y: 40})
//	gest, err = tr.End()
//	final := tr.Graph()
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taloscope/taloscope/pkg/collision"
	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/graph"
)

// Sentinel errors for gesture operations.
var (
	// ErrGestureActive is returned by Begin while another gesture is in flight.
	ErrGestureActive = errors.New("a drag gesture is already active")

	// ErrNoGesture is returned by Move, End and Cancel when idle.
	ErrNoGesture = errors.New("no drag gesture is active")
)

// State is the gesture state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Gesture describes one drag from Begin to End.
type Gesture struct {
	ID        uuid.UUID
	NodeID    string
	Start     graph.Position
	Current   graph.Position
	StartedAt time.Time
	Moves     int
}

// Tracker holds a graph and at most one active gesture. It is safe for
// concurrent use.
type Tracker struct {
	mu       sync.Mutex
	g        *graph.Graph
	resolver collision.Resolver
	active   *Gesture
	now      func() time.Time
}

// NewTracker creates a tracker over a copy of g.
func NewTracker(g *graph.Graph, r collision.Resolver) *Tracker {
	return &Tracker{g: g.Clone(), resolver: r, now: time.Now}
}

// State reports whether a gesture is active.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return Dragging
	}
	return Idle
}

// Active returns the active gesture, if any.
func (t *Tracker) Active() (Gesture, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return Gesture{}, false
	}
	return *t.active, true
}

// Graph returns a copy of the tracked graph with every stored position.
func (t *Tracker) Graph() *graph.Graph {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.g.Clone()
}

// Begin starts dragging nodeID.
func (t *Tracker) Begin(nodeID string) (Gesture, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return Gesture{}, ErrGestureActive
	}
	n, ok := t.g.Node(nodeID)
	if !ok {
		return Gesture{}, errs.New(errs.ErrCodeNotFound, "node %q not found", nodeID)
	}
	t.active = &Gesture{
		ID:        uuid.New(),
		NodeID:    nodeID,
		Start:     n.Position,
		Current:   n.Position,
		StartedAt: t.now(),
	}
	return *t.active, nil
}

// Move proposes a new position for the dragged node. The resolved position
// is stored and returned.
func (t *Tracker) Move(proposed graph.Position) (graph.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return graph.Position{}, ErrNoGesture
	}
	return t.moveLocked(proposed), nil
}

// MoveBy proposes the current position shifted by dx, dy.
func (t *Tracker) MoveBy(dx, dy float64) (graph.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return graph.Position{}, ErrNoGesture
	}
	cur := t.active.Current
	return t.moveLocked(graph.Position{X: cur.X + dx, Y: cur.Y + dy}), nil
}

// moveLocked resolves and stores proposed for the active gesture. t.mu must
// be held.
func (t *Tracker) moveLocked(proposed graph.Position) graph.Position {
	pos := t.resolver.Resolve(t.active.NodeID, proposed, t.g.Nodes)
	n, _ := t.g.Node(t.active.NodeID)
	n.Position = pos
	t.active.Current = pos
	t.active.Moves++
	return pos
}

// End finishes the active gesture, keeping the last resolved position.
func (t *Tracker) End() (Gesture, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return Gesture{}, ErrNoGesture
	}
	g := *t.active
	t.active = nil
	return g, nil
}

// Cancel aborts the active gesture and restores the node's start position.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return ErrNoGesture
	}
	n, _ := t.g.Node(t.active.NodeID)
	n.Position = t.active.Start
	t.active = nil
	return nil
}
