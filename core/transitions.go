package core

// DetectRankUp reports whether moving to the resolved rank is a genuine
// promotion relative to the persisted last-seen rank name.
//
// It never fires on an initial load (empty or unknown lastSeen) and never
// twice for the same transition: the caller persists the new rank name after
// a hit, which guards the next pass.
func DetectRankUp(lastSeen string, status RankStatus, table RankTable) bool {
	if lastSeen == "" || lastSeen == status.Current.Name {
		return false
	}
	prev, ok := table.Lookup(lastSeen)
	if !ok {
		// unknown persisted name, likely from an older table; treat as initial
		return false
	}
	return status.Current.Threshold > prev.Threshold
}
