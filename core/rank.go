package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Rank is a named tier in the ascending threshold table.
type Rank struct {
	Name      string `json:"name"`
	Threshold int64  `json:"point_threshold"`
}

// RankTable is a validated, ascending list of ranks. Construct with
// NewRankTable; a malformed table is a configuration error and must be
// rejected at startup, not at call time.
type RankTable struct {
	ranks []Rank
}

// NewRankTable validates and builds a rank table. The table must be non-empty,
// strictly ascending by threshold, start at threshold 0, and carry non-empty
// unique names.
func NewRankTable(ranks []Rank) (RankTable, error) {
	if len(ranks) == 0 {
		return RankTable{}, errors.New("rank table cannot be empty")
	}
	if ranks[0].Threshold != 0 {
		return RankTable{}, errors.New("first rank threshold must be 0")
	}
	seen := make(map[string]struct{}, len(ranks))
	for i, r := range ranks {
		if strings.TrimSpace(r.Name) == "" {
			return RankTable{}, fmt.Errorf("rank[%d] has empty name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return RankTable{}, fmt.Errorf("duplicate rank name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if i > 0 && r.Threshold <= ranks[i-1].Threshold {
			return RankTable{}, fmt.Errorf("rank table not ascending at %q", r.Name)
		}
	}
	t := RankTable{ranks: make([]Rank, len(ranks))}
	copy(t.ranks, ranks)
	return t, nil
}

// MustRankTable panics on a malformed table. For fixed built-in tables only.
func MustRankTable(ranks []Rank) RankTable {
	t, err := NewRankTable(ranks)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRankTable returns the stock onboarding rank ladder.
func DefaultRankTable() RankTable {
	return MustRankTable([]Rank{
		{Name: "Navigator", Threshold: 0},
		{Name: "Captain", Threshold: 250},
		{Name: "Admiral", Threshold: 500},
		{Name: "Fleet Admiral", Threshold: 1000},
	})
}

// Ranks returns a copy of the table entries in ascending order.
func (t RankTable) Ranks() []Rank {
	out := make([]Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}

// Lookup finds a rank by name.
func (t RankTable) Lookup(name string) (Rank, bool) {
	for _, r := range t.ranks {
		if r.Name == name {
			return r, true
		}
	}
	return Rank{}, false
}

// RankStatus is the derived rank view for a score. Next is nil at the
// terminal top rank.
type RankStatus struct {
	Current  Rank  `json:"current"`
	Next     *Rank `json:"next,omitempty"`
	Progress int   `json:"progress_percent"`
}

// Resolve returns the highest rank whose threshold is <= score, the next rank
// above it, and the rounded progress percentage toward that next rank,
// clamped to [0,100]. Pure and total for any score.
func (t RankTable) Resolve(score int64) RankStatus {
	// search from the top down; ties prefer the higher threshold
	idx := 0
	for i := len(t.ranks) - 1; i >= 0; i-- {
		if t.ranks[i].Threshold <= score {
			idx = i
			break
		}
	}
	st := RankStatus{Current: t.ranks[idx]}
	if idx == len(t.ranks)-1 {
		// terminal rank: no next tier, no progress to report
		return st
	}
	next := t.ranks[idx+1]
	st.Next = &next
	span := next.Threshold - st.Current.Threshold
	if span <= 0 {
		return st
	}
	pct := int(math.Round(100 * float64(score-st.Current.Threshold) / float64(span)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	st.Progress = pct
	return st
}
