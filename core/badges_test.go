package core

import "testing"

func unlockedSet(results []BadgeResult) map[BadgeID]struct{} {
	out := map[BadgeID]struct{}{}
	for _, r := range results {
		if r.Unlocked {
			out[r.ID] = struct{}{}
		}
	}
	return out
}

func resultFor(t *testing.T, results []BadgeResult, id BadgeID) BadgeResult {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("badge %q missing from results", id)
	return BadgeResult{}
}

func TestExplorerUnlocks(t *testing.T) {
	snap := Snapshot{QuizCompleted: true, AssignmentCompleted: true}
	results := EvaluateBadges(snap, DefaultBadges(), nil)
	r := resultFor(t, results, "explorer")
	if !r.JustUnlocked {
		t.Fatal("explorer should unlock")
	}
	if resultFor(t, results, "innovator").Unlocked {
		t.Fatal("innovator should stay locked")
	}
}

func TestCollaboratorCountsQualifyingTasks(t *testing.T) {
	tasks := make([]LearningTask, 0, 6)
	for i := 0; i < 5; i++ {
		tasks = append(tasks, LearningTask{Dimension: "Collaboration", Rating: 1})
	}
	tasks = append(tasks, LearningTask{Dimension: "Collaboration", Rating: 0})
	snap := Snapshot{Tasks: tasks}

	results := EvaluateBadges(snap, DefaultBadges(), nil)
	if !resultFor(t, results, "collaborator").JustUnlocked {
		t.Fatal("collaborator should unlock with 5 rated tasks")
	}
	// only one distinct dimension present
	if resultFor(t, results, "navigators-report").Unlocked {
		t.Fatal("navigators-report should stay locked")
	}
}

func TestNavigatorsReportNeedsSixDimensions(t *testing.T) {
	dims := []string{"Collaboration", "Leadership", "Communication", "Adaptability", "Curiosity", "Craft"}
	var tasks []LearningTask
	for _, d := range dims {
		tasks = append(tasks, LearningTask{Dimension: d, Rating: 2})
	}
	snap := Snapshot{Tasks: tasks}
	if !resultFor(t, EvaluateBadges(snap, DefaultBadges(), nil), "navigators-report").JustUnlocked {
		t.Fatal("six distinct rated dimensions should unlock")
	}
}

func TestInnovatorCountsComments(t *testing.T) {
	snap := Snapshot{Tasks: []LearningTask{
		{Dimension: "Craft", Rating: 3, Comments: []string{"a", "b", "c", "d", "e"}},
		{Dimension: "Curiosity", Rating: 0, Comments: []string{"f", "g", "h", "i", "j"}},
	}}
	if !resultFor(t, EvaluateBadges(snap, DefaultBadges(), nil), "innovator").JustUnlocked {
		t.Fatal("ten comments should unlock innovator")
	}
}

func TestEvaluateBadgesIdempotent(t *testing.T) {
	snap := Snapshot{QuizCompleted: true, AssignmentCompleted: true}
	first := EvaluateBadges(snap, DefaultBadges(), nil)
	unlocked := unlockedSet(first)

	second := EvaluateBadges(snap, DefaultBadges(), unlocked)
	for _, r := range second {
		if r.JustUnlocked {
			t.Fatalf("badge %q re-reported just unlocked", r.ID)
		}
	}
}

func TestUnlockIsLatched(t *testing.T) {
	unlocked := map[BadgeID]struct{}{"explorer": {}}
	// snapshot no longer satisfies the predicate
	results := EvaluateBadges(Snapshot{}, DefaultBadges(), unlocked)
	r := resultFor(t, results, "explorer")
	if !r.Unlocked || r.JustUnlocked {
		t.Fatalf("latched badge regressed: %+v", r)
	}
}

func TestValidateBadgeDefs(t *testing.T) {
	if err := ValidateBadgeDefs(DefaultBadges()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := ValidateBadgeDefs(nil); err == nil {
		t.Fatal("empty badge table should be rejected")
	}
	bad := []BadgeDef{{ID: "x", Criteria: "no_such_criteria"}}
	if err := ValidateBadgeDefs(bad); err == nil {
		t.Fatal("unknown criteria should be rejected")
	}
}

func TestRegisterCriteria(t *testing.T) {
	if err := RegisterCriteria("quiz_only", func(s Snapshot) bool { return s.QuizCompleted }); err != nil {
		t.Fatal(err)
	}
	if err := RegisterCriteria("quiz_only", func(Snapshot) bool { return true }); err == nil {
		t.Fatal("duplicate registration should be rejected")
	}
	defs := []BadgeDef{{ID: "quizzer", Name: "Quizzer", Criteria: "quiz_only"}}
	if !resultFor(t, EvaluateBadges(Snapshot{QuizCompleted: true}, defs, nil), "quizzer").JustUnlocked {
		t.Fatal("custom criteria should unlock")
	}
}
