package core

import "fmt"

// CriteriaID names a registered badge predicate.
type CriteriaID string

// Criteria is a pure predicate over a snapshot.
type Criteria func(Snapshot) bool

// BadgeDef defines a badge once; identity is by ID. Only the unlocked state
// mutates over time, and only forward.
type BadgeDef struct {
	ID          BadgeID    `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Criteria    CriteriaID `json:"criteria"`
}

// BadgeResult reports the latch state of one badge after an evaluation pass.
type BadgeResult struct {
	ID           BadgeID `json:"id"`
	Unlocked     bool    `json:"unlocked"`
	JustUnlocked bool    `json:"just_unlocked"`
}

const (
	CriteriaExplorer         CriteriaID = "explorer"
	CriteriaCollaborator     CriteriaID = "collaborator"
	CriteriaNavigatorsReport CriteriaID = "navigators_report"
	CriteriaInnovator        CriteriaID = "innovator"
)

// criteriaRegistry maps criteria names to predicates. Named functions rather
// than inline closures so badge definitions stay serializable and each
// predicate is testable on its own.
var criteriaRegistry = map[CriteriaID]Criteria{
	CriteriaExplorer:         explorerCriteria,
	CriteriaCollaborator:     collaboratorCriteria,
	CriteriaNavigatorsReport: navigatorsReportCriteria,
	CriteriaInnovator:        innovatorCriteria,
}

// RegisterCriteria adds a custom predicate under the given name. Registering
// over an existing name is rejected.
func RegisterCriteria(id CriteriaID, fn Criteria) error {
	if id == "" || fn == nil {
		return fmt.Errorf("criteria registration requires a name and a function")
	}
	if _, exists := criteriaRegistry[id]; exists {
		return fmt.Errorf("criteria %q already registered", id)
	}
	criteriaRegistry[id] = fn
	return nil
}

// CriteriaFor looks up a registered predicate.
func CriteriaFor(id CriteriaID) (Criteria, bool) {
	fn, ok := criteriaRegistry[id]
	return fn, ok
}

// ValidateBadgeDefs ensures every definition has a valid id and a registered
// predicate. A bad badge table is a configuration error; reject at startup.
func ValidateBadgeDefs(defs []BadgeDef) error {
	if len(defs) == 0 {
		return fmt.Errorf("badge table cannot be empty")
	}
	seen := make(map[BadgeID]struct{}, len(defs))
	for _, d := range defs {
		if err := ValidateBadgeID(d.ID); err != nil {
			return fmt.Errorf("badge %q: %w", d.ID, err)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate badge id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		if _, ok := CriteriaFor(d.Criteria); !ok {
			return fmt.Errorf("badge %q: unknown criteria %q", d.ID, d.Criteria)
		}
	}
	return nil
}

// DefaultBadges returns the stock onboarding badge definitions.
func DefaultBadges() []BadgeDef {
	return []BadgeDef{
		{ID: "explorer", Name: "Explorer", Description: "Complete the welcome quiz and the first assignment", Icon: "compass", Criteria: CriteriaExplorer},
		{ID: "collaborator", Name: "Collaborator", Description: "Rate five learning tasks in the Collaboration dimension", Icon: "handshake", Criteria: CriteriaCollaborator},
		{ID: "navigators-report", Name: "Navigator's Report", Description: "Rate tasks across all six learning dimensions", Icon: "map", Criteria: CriteriaNavigatorsReport},
		{ID: "innovator", Name: "Innovator", Description: "Leave ten comments across your learning tasks", Icon: "lightbulb", Criteria: CriteriaInnovator},
	}
}

// EvaluateBadges runs each badge's predicate against the snapshot. Badges in
// unlocked are skipped entirely: unlocking is a one-way latch and a badge is
// never re-evaluated back to locked, even if its condition no longer holds.
// The caller owns the side effects: each JustUnlocked badge should trigger
// exactly one notification, and the grown unlocked set must be persisted
// before the next evaluation pass.
func EvaluateBadges(snap Snapshot, defs []BadgeDef, unlocked map[BadgeID]struct{}) []BadgeResult {
	out := make([]BadgeResult, 0, len(defs))
	for _, d := range defs {
		if _, done := unlocked[d.ID]; done {
			out = append(out, BadgeResult{ID: d.ID, Unlocked: true})
			continue
		}
		res := BadgeResult{ID: d.ID}
		if fn, ok := CriteriaFor(d.Criteria); ok && fn(snap) {
			res.Unlocked = true
			res.JustUnlocked = true
		}
		out = append(out, res)
	}
	return out
}

func explorerCriteria(s Snapshot) bool {
	return s.QuizCompleted && s.AssignmentCompleted
}

func collaboratorCriteria(s Snapshot) bool {
	n := 0
	for _, t := range s.Tasks {
		if t.Dimension == "Collaboration" && t.Rating > 0 {
			n++
		}
	}
	return n >= 5
}

func navigatorsReportCriteria(s Snapshot) bool {
	dims := map[string]struct{}{}
	for _, t := range s.Tasks {
		if t.Rating > 0 {
			dims[t.Dimension] = struct{}{}
		}
	}
	return len(dims) >= 6
}

func innovatorCriteria(s Snapshot) bool {
	n := 0
	for _, t := range s.Tasks {
		n += len(t.Comments)
	}
	return n >= 10
}
