package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/taloscope/taloscope/pkg/collision"
	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/graph"
)

func twoNodes() *graph.Graph {
	return &graph.Graph{Nodes: []graph.Node{
		{ID: "a", Position: graph.Position{X: 0, Y: 0}, Size: graph.DefaultFootprint},
		{ID: "b", Position: graph.Position{X: 400, Y: 0}, Size: graph.DefaultFootprint},
	}}
}

func TestTrackerLifecycle(t *testing.T) {
	src := twoNodes()
	tr := NewTracker(src, collision.Resolver{})

	if tr.State() != Idle {
		t.Fatalf("initial state = %v", tr.State())
	}
	if _, err := tr.Move(graph.Position{}); !errors.Is(err, ErrNoGesture) {
		t.Errorf("Move while idle = %v, want ErrNoGesture", err)
	}

	g, err := tr.Begin("a")
	if err != nil {
		t.Fatal(err)
	}
	if g.ID == uuid.Nil || g.NodeID != "a" || tr.State() != Dragging {
		t.Errorf("gesture = %+v, state %v", g, tr.State())
	}

	if _, err := tr.Begin("b"); !errors.Is(err, ErrGestureActive) {
		t.Errorf("second Begin = %v, want ErrGestureActive", err)
	}

	// overlaps b by 50 horizontally, 100 vertically: pushed left of b
	pos, err := tr.Move(graph.Position{X: 200, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if pos != (graph.Position{X: 150, Y: 0}) {
		t.Errorf("Move() = %v, want {150 0}", pos)
	}

	pos, _ = tr.MoveBy(-50, 10)
	if pos != (graph.Position{X: 100, Y: 10}) {
		t.Errorf("MoveBy() = %v, want {100 10}", pos)
	}

	done, err := tr.End()
	if err != nil {
		t.Fatal(err)
	}
	if done.Moves != 2 || done.Current != pos || done.Start != (graph.Position{}) {
		t.Errorf("ended gesture = %+v", done)
	}
	if tr.State() != Idle {
		t.Error("End did not return to idle")
	}

	n, _ := tr.Graph().Node("a")
	if n.Position != pos {
		t.Errorf("stored position = %v, want %v", n.Position, pos)
	}
	if src.Nodes[0].Position != (graph.Position{}) {
		t.Error("tracker modified the caller's graph")
	}
}

func TestTrackerCancel(t *testing.T) {
	tr := NewTracker(twoNodes(), collision.Resolver{})
	if err := tr.Cancel(); !errors.Is(err, ErrNoGesture) {
		t.Errorf("Cancel while idle = %v", err)
	}
	_, _ = tr.Begin("b")
	_, _ = tr.Move(graph.Position{X: 900, Y: 900})
	if err := tr.Cancel(); err != nil {
		t.Fatal(err)
	}
	n, _ := tr.Graph().Node("b")
	if n.Position != (graph.Position{X: 400, Y: 0}) {
		t.Errorf("Cancel left b at %v", n.Position)
	}
}

func TestTrackerUnknownNode(t *testing.T) {
	tr := NewTracker(twoNodes(), collision.Resolver{})
	_, err := tr.Begin("ghost")
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Begin(ghost) = %v, want NOT_FOUND", err)
	}
	if tr.State() != Idle {
		t.Error("failed Begin left a gesture active")
	}
}

func TestTrackerMoveByStaysWithItsGesture(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		{ID: "a", Position: graph.Position{X: 0, Y: 0}, Size: graph.DefaultFootprint},
		{ID: "b", Position: graph.Position{X: 1000, Y: 1000}, Size: graph.DefaultFootprint},
	}}
	tr := NewTracker(g, collision.Resolver{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 500 {
			id := "a"
			if i%2 == 1 {
				id = "b"
			}
			if _, err := tr.Begin(id); err != nil {
				t.Errorf("Begin(%s): %v", id, err)
				return
			}
			if _, err := tr.End(); err != nil {
				t.Errorf("End: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 2000 {
			// a zero delta must never carry one node's position to another
			_, _ = tr.MoveBy(0, 0)
		}
	}()
	wg.Wait()

	want := map[string]graph.Position{"a": {X: 0, Y: 0}, "b": {X: 1000, Y: 1000}}
	for id, p := range want {
		if n, _ := tr.Graph().Node(id); n.Position != p {
			t.Errorf("%s = %v, want %v", id, n.Position, p)
		}
	}
}
