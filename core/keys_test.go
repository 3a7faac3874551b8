package core

import "testing"

func TestParseFlag(t *testing.T) {
	if !ParseFlag("true") {
		t.Fatal("legacy true string should parse")
	}
	if ParseFlag("") || ParseFlag("yes") || ParseFlag("TRUE") {
		t.Fatal("only the exact true string counts")
	}
}

func TestParseChallengesLenient(t *testing.T) {
	if got := ParseChallenges("{not json"); got != nil {
		t.Fatalf("malformed input should degrade to nil, got %v", got)
	}
	if got := ParseChallenges(""); got != nil {
		t.Fatalf("empty input should degrade to nil, got %v", got)
	}
	raw := `[{"id":"c1","deadline":"2026-03-10T12:00:00Z","status":"completed"}]`
	got := ParseChallenges(raw)
	if len(got) != 1 || got[0].ID != "c1" || got[0].Status != ChallengeCompleted {
		t.Fatalf("got %+v", got)
	}
}

func TestParseTasksClampsRating(t *testing.T) {
	raw := `[{"dimension":"Craft","rating":9},{"dimension":"Craft","rating":3}]`
	got := ParseTasks(raw)
	if len(got) != 2 {
		t.Fatalf("got %d tasks", len(got))
	}
	if got[0].Rating != 0 {
		t.Fatalf("out-of-range rating should clamp to unrated, got %d", got[0].Rating)
	}
	if got[1].Rating != 3 {
		t.Fatalf("got %d", got[1].Rating)
	}
}

func TestParsePoints(t *testing.T) {
	if ParsePoints("125") != 125 {
		t.Fatal("decimal string should parse")
	}
	if ParsePoints("") != 0 || ParsePoints("abc") != 0 || ParsePoints("-5") != 0 {
		t.Fatal("bad input should degrade to 0")
	}
}

func TestBadgeRecordsRoundTrip(t *testing.T) {
	in := []BadgeRecord{{ID: "explorer", Name: "Explorer", Unlocked: true}}
	out := ParseBadgeRecords(EncodeBadgeRecords(in))
	if len(out) != 1 || out[0].ID != "explorer" || !out[0].Unlocked {
		t.Fatalf("got %+v", out)
	}
	if ParseBadgeRecords("][") != nil {
		t.Fatal("malformed records should degrade to nil")
	}
}
