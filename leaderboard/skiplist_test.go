package leaderboard

import (
	"crewkit/core"
	"testing"
)

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].User != core.UserID("b") || top[1].User != core.UserID("c") || top[2].User != core.UserID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.UserID("a"), 25)
	top = s.TopN(1)
	if top[0].User != core.UserID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
	if e, ok := s.Get(core.UserID("c")); !ok || e.Score != 15 {
		t.Fatalf("get c: %#v %v", e, ok)
	}
	s.Remove(core.UserID("a"))
	if _, ok := s.Get(core.UserID("a")); ok {
		t.Fatal("a should be removed")
	}
}
