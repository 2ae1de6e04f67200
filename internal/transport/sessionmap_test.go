package transport

import "testing"

func TestSessionMapInsertGetRemove(t *testing.T) {
	m := NewSessionMap()
	s := NewSession(5, nil, nil, nil, nil)

	if _, ok := m.Get(5); ok {
		t.Fatal("expected no session before insert")
	}

	m.Insert(s)
	got, ok := m.Get(5)
	if !ok || got != s {
		t.Fatal("expected to get back the inserted session")
	}

	m.Remove(5)
	if _, ok := m.Get(5); ok {
		t.Fatal("expected session gone after remove")
	}
}

func TestSessionMapByPlayerIDScansAllShards(t *testing.T) {
	m := NewSessionMap()
	for i := uint64(0); i < 40; i++ {
		s := NewSession(i, nil, nil, nil, nil)
		if i == 33 {
			s.Bind(999)
		}
		m.Insert(s)
	}

	got, ok := m.ByPlayerID(999)
	if !ok {
		t.Fatal("expected to find the session bound to player 999")
	}
	if got.ConnID() != 33 {
		t.Errorf("expected conn id 33, got %d", got.ConnID())
	}

	if _, ok := m.ByPlayerID(12345); ok {
		t.Error("expected no match for an unbound player id")
	}
}
