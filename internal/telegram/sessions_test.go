package telegram

import (
	"sync"
	"testing"
)

func TestSessionRegistryGet(t *testing.T) {
	reg := NewSessionRegistry()

	s1, existed := reg.Get(100)
	if existed {
		t.Error("first Get reported an existing session")
	}
	if s1 == nil || s1.State == nil || s1.ID == "" {
		t.Fatal("fresh session not initialized")
	}

	s2, existed := reg.Get(100)
	if !existed {
		t.Error("second Get did not find the session")
	}
	if s2 != s1 {
		t.Error("same chat returned a different session")
	}
}

func TestSessionIsolation(t *testing.T) {
	reg := NewSessionRegistry()

	a, _ := reg.Get(1)
	b, _ := reg.Get(2)
	if a == b || a.State == b.State {
		t.Fatal("distinct chats share a session")
	}
	if a.ID == b.ID {
		t.Error("distinct sessions share an ID")
	}

	a.State.Profile.Age = 40
	if b.State.Profile.Age != 0 {
		t.Error("state leaked between chats")
	}
}

func TestSessionDrop(t *testing.T) {
	reg := NewSessionRegistry()

	first, _ := reg.Get(7)
	first.State.Profile.Age = 30
	reg.Drop(7)

	fresh, existed := reg.Get(7)
	if existed {
		t.Error("dropped session still reported as existing")
	}
	if fresh == first {
		t.Error("Drop did not discard the session")
	}
	if fresh.State.Profile.Age != 0 {
		t.Error("new session carries old state")
	}

	// Dropping an unknown chat is a no-op.
	reg.Drop(999)
}

func TestSessionRegistryLen(t *testing.T) {
	reg := NewSessionRegistry()
	if reg.Len() != 0 {
		t.Fatalf("empty registry Len = %d", reg.Len())
	}
	reg.Get(1)
	reg.Get(2)
	reg.Get(1)
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	reg.Drop(1)
	if reg.Len() != 1 {
		t.Errorf("Len after drop = %d, want 1", reg.Len())
	}
}

func TestSessionRegistryConcurrentAccess(t *testing.T) {
	reg := NewSessionRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			s, _ := reg.Get(chat % 5)
			s.mu.Lock()
			s.State.Profile.Age++
			s.mu.Unlock()
		}(int64(i))
	}
	wg.Wait()
	if reg.Len() != 5 {
		t.Errorf("Len = %d, want 5", reg.Len())
	}
}
