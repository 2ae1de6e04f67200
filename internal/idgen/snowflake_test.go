package idgen

import "testing"

func TestNextStrictlyIncreasing(t *testing.T) {
	g, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var last int64 = -1
	for i := 0; i < 10000; i++ {
		id := g.Next()
		if id <= last {
			t.Fatalf("id %d not greater than previous %d at iteration %d", id, last, i)
		}
		last = id
	}
}

func TestDistinctNodesDistinctIDs(t *testing.T) {
	g1, _ := New(1)
	g2, _ := New(2)

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := g1.Next()
		if seen[id] {
			t.Fatalf("duplicate id %d from node 1", id)
		}
		seen[id] = true
	}
	for i := 0; i < 1000; i++ {
		id := g2.Next()
		if seen[id] {
			t.Fatalf("collision: node 2 produced id %d already seen from node 1", id)
		}
		seen[id] = true
	}
}

func TestNewRejectsOutOfRangeNode(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Error("expected error for negative node id")
	}
	if _, err := New(maxNode + 1); err == nil {
		t.Error("expected error for node id beyond range")
	}
}
