package analytics

import (
	"sync"
	"time"

	"crewkit/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// DailyActive tracks daily active crew members.
type DailyActive struct {
	mu   sync.Mutex
	days map[string]map[core.UserID]struct{}
}

func NewDailyActive() *DailyActive {
	return &DailyActive{days: map[string]map[core.UserID]struct{}{}}
}

func (d *DailyActive) OnEvent(e core.Event) {
	day := e.Time.UTC().Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[core.UserID]struct{}{}
		d.days[day] = m
	}
	m[e.UserID] = struct{}{}
}

func (d *DailyActive) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// CrewMetrics aggregates onboarding KPIs from the event stream:
// active crew, badge unlocks, rank progression and task activity.
type CrewMetrics struct {
	mu sync.RWMutex

	// Engagement
	dailyActiveCrew   map[string]map[core.UserID]struct{}
	weeklyActiveCrew  map[string]map[core.UserID]struct{}
	monthlyActiveCrew map[string]map[core.UserID]struct{}

	// Scores
	scoreEventsByDay map[string]int64
	latestScore      map[core.UserID]int64

	// Badges
	badgesUnlockedByDay map[string]int64
	unlocksByBadge      map[core.BadgeID]int64
	badgeHolders        map[core.BadgeID]map[core.UserID]struct{}

	// Ranks
	rankUpsByDay  map[string]int64
	rankUpsByRank map[string]int64
	currentRank   map[core.UserID]string

	// Challenges and learning tasks
	challengesCompletedByDay map[string]int64
	tasksRatedByDay          map[string]int64
	tasksByDimension         map[string]int64
	ratingSumByDimension     map[string]int64

	realtime struct {
		scoreEvents  int64
		badgeUnlocks int64
		rankUps      int64
		lastReset    time.Time
	}
}

func NewCrewMetrics() *CrewMetrics {
	m := &CrewMetrics{
		dailyActiveCrew:          make(map[string]map[core.UserID]struct{}),
		weeklyActiveCrew:         make(map[string]map[core.UserID]struct{}),
		monthlyActiveCrew:        make(map[string]map[core.UserID]struct{}),
		scoreEventsByDay:         make(map[string]int64),
		latestScore:              make(map[core.UserID]int64),
		badgesUnlockedByDay:      make(map[string]int64),
		unlocksByBadge:           make(map[core.BadgeID]int64),
		badgeHolders:             make(map[core.BadgeID]map[core.UserID]struct{}),
		rankUpsByDay:             make(map[string]int64),
		rankUpsByRank:            make(map[string]int64),
		currentRank:              make(map[core.UserID]string),
		challengesCompletedByDay: make(map[string]int64),
		tasksRatedByDay:          make(map[string]int64),
		tasksByDimension:         make(map[string]int64),
		ratingSumByDimension:     make(map[string]int64),
	}
	m.realtime.lastReset = time.Now().UTC()
	return m
}

func (m *CrewMetrics) OnEvent(e core.Event) {
	ts := e.Time.UTC()
	day := ts.Format("2006-01-02")
	year, week := ts.ISOWeek()
	weekKey := weekKeyOf(year, week)
	monthKey := ts.Format("2006-01")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.markActive(m.dailyActiveCrew, day, e.UserID)
	m.markActive(m.weeklyActiveCrew, weekKey, e.UserID)
	m.markActive(m.monthlyActiveCrew, monthKey, e.UserID)

	switch e.Type {
	case core.EventScoreRecomputed:
		m.scoreEventsByDay[day]++
		m.latestScore[e.UserID] = e.Score
		if e.Rank != "" {
			m.currentRank[e.UserID] = e.Rank
		}
		m.realtime.scoreEvents++

	case core.EventBadgeUnlocked:
		m.badgesUnlockedByDay[day]++
		m.unlocksByBadge[e.Badge]++
		holders := m.badgeHolders[e.Badge]
		if holders == nil {
			holders = map[core.UserID]struct{}{}
			m.badgeHolders[e.Badge] = holders
		}
		holders[e.UserID] = struct{}{}
		m.realtime.badgeUnlocks++

	case core.EventRankUp:
		m.rankUpsByDay[day]++
		m.rankUpsByRank[e.Rank]++
		m.currentRank[e.UserID] = e.Rank
		m.realtime.rankUps++

	case core.EventChallengeCompleted:
		m.challengesCompletedByDay[day]++

	case core.EventTaskRated:
		m.tasksRatedByDay[day]++
		if e.Dimension != "" {
			m.tasksByDimension[e.Dimension]++
			m.ratingSumByDimension[e.Dimension] += int64(e.Rating)
		}
	}
}

func (m *CrewMetrics) markActive(buckets map[string]map[core.UserID]struct{}, key string, user core.UserID) {
	b := buckets[key]
	if b == nil {
		b = map[core.UserID]struct{}{}
		buckets[key] = b
	}
	b[user] = struct{}{}
}

func (m *CrewMetrics) GetDailyActiveCrew(day string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dailyActiveCrew[day])
}

func (m *CrewMetrics) GetWeeklyActiveCrew(week string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.weeklyActiveCrew[week])
}

func (m *CrewMetrics) GetMonthlyActiveCrew(month string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.monthlyActiveCrew[month])
}

func (m *CrewMetrics) GetScoreEventsByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scoreEventsByDay[day]
}

func (m *CrewMetrics) GetBadgesUnlockedByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.badgesUnlockedByDay[day]
}

func (m *CrewMetrics) GetRankUpsByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rankUpsByDay[day]
}

func (m *CrewMetrics) GetChallengesCompletedByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.challengesCompletedByDay[day]
}

func (m *CrewMetrics) GetTasksRatedByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tasksRatedByDay[day]
}

// GetUnlocksByBadge returns the number of unlock events per badge.
func (m *CrewMetrics) GetUnlocksByBadge() map[core.BadgeID]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[core.BadgeID]int64, len(m.unlocksByBadge))
	for id, n := range m.unlocksByBadge {
		out[id] = n
	}
	return out
}

// GetUniqueHolders returns how many distinct crew members hold the badge.
func (m *CrewMetrics) GetUniqueHolders(badge core.BadgeID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.badgeHolders[badge])
}

// GetRankDistribution returns how many crew members currently sit at each rank.
func (m *CrewMetrics) GetRankDistribution() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, rank := range m.currentRank {
		out[rank]++
	}
	return out
}

// GetTasksByDimension returns rated-task counts keyed by leadership dimension.
func (m *CrewMetrics) GetTasksByDimension() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.tasksByDimension))
	for dim, n := range m.tasksByDimension {
		out[dim] = n
	}
	return out
}

// GetAverageRating returns the mean self-rating for a dimension, 0 if unrated.
func (m *CrewMetrics) GetAverageRating(dimension string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := m.tasksByDimension[dimension]
	if n == 0 {
		return 0
	}
	return float64(m.ratingSumByDimension[dimension]) / float64(n)
}

// GetRealtimeStats returns counters accumulated since the last reset.
func (m *CrewMetrics) GetRealtimeStats() (scoreEvents, badgeUnlocks, rankUps int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.realtime.scoreEvents, m.realtime.badgeUnlocks, m.realtime.rankUps
}

// ResetRealtimeStats zeroes the realtime counters.
func (m *CrewMetrics) ResetRealtimeStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.realtime.scoreEvents = 0
	m.realtime.badgeUnlocks = 0
	m.realtime.rankUps = 0
	m.realtime.lastReset = time.Now().UTC()
}

// GetSummary returns headline KPIs for dashboards and exports.
func (m *CrewMetrics) GetSummary() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var totalUnlocks int64
	for _, n := range m.unlocksByBadge {
		totalUnlocks += n
	}
	var totalRankUps int64
	for _, n := range m.rankUpsByRank {
		totalRankUps += n
	}
	var fleetScore int64
	for _, s := range m.latestScore {
		fleetScore += s
	}

	return map[string]any{
		"tracked_crew":          len(m.latestScore),
		"fleet_score":           fleetScore,
		"total_badge_unlocks":   totalUnlocks,
		"total_rank_ups":        totalRankUps,
		"dimensions_with_tasks": len(m.tasksByDimension),
	}
}
