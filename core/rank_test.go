package core

import "testing"

func testTable(t *testing.T) RankTable {
	t.Helper()
	table, err := NewRankTable([]Rank{
		{Name: "Navigator", Threshold: 0},
		{Name: "Captain", Threshold: 250},
		{Name: "Admiral", Threshold: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestResolveRankProgress(t *testing.T) {
	st := testTable(t).Resolve(100)
	if st.Current.Name != "Navigator" {
		t.Fatalf("current = %q", st.Current.Name)
	}
	if st.Next == nil || st.Next.Name != "Captain" {
		t.Fatalf("next = %v", st.Next)
	}
	if st.Progress != 40 {
		t.Fatalf("progress = %d, want 40", st.Progress)
	}
}

func TestResolveRankHighestSatisfied(t *testing.T) {
	table := testTable(t)
	for _, score := range []int64{0, 1, 249, 250, 499, 500, 10_000} {
		st := table.Resolve(score)
		if st.Current.Threshold > score {
			t.Fatalf("score %d resolved to threshold %d", score, st.Current.Threshold)
		}
		if st.Next != nil && st.Next.Threshold <= score {
			t.Fatalf("score %d should have resolved to %q", score, st.Next.Name)
		}
	}
}

func TestResolveRankTerminal(t *testing.T) {
	st := testTable(t).Resolve(9999)
	if st.Current.Name != "Admiral" {
		t.Fatalf("current = %q", st.Current.Name)
	}
	if st.Next != nil {
		t.Fatal("terminal rank should have no next")
	}
	if st.Progress != 0 {
		t.Fatalf("terminal progress = %d", st.Progress)
	}
}

func TestResolveRankBoundary(t *testing.T) {
	st := testTable(t).Resolve(250)
	if st.Current.Name != "Captain" {
		t.Fatalf("threshold tie should prefer higher rank, got %q", st.Current.Name)
	}
	if st.Progress != 0 {
		t.Fatalf("fresh rank progress = %d", st.Progress)
	}
}

func TestNewRankTableRejectsMalformed(t *testing.T) {
	if _, err := NewRankTable(nil); err == nil {
		t.Fatal("empty table should be rejected")
	}
	if _, err := NewRankTable([]Rank{{Name: "A", Threshold: 10}}); err == nil {
		t.Fatal("non-zero base threshold should be rejected")
	}
	if _, err := NewRankTable([]Rank{{Name: "A", Threshold: 0}, {Name: "B", Threshold: 0}}); err == nil {
		t.Fatal("non-ascending table should be rejected")
	}
	if _, err := NewRankTable([]Rank{{Name: "A", Threshold: 0}, {Name: "A", Threshold: 5}}); err == nil {
		t.Fatal("duplicate names should be rejected")
	}
}

func TestDefaultRankTable(t *testing.T) {
	table := DefaultRankTable()
	if len(table.Ranks()) == 0 {
		t.Fatal("default table is empty")
	}
	if _, ok := table.Lookup("Navigator"); !ok {
		t.Fatal("missing base rank")
	}
}
