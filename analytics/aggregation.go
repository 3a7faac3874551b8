package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"crewkit/core"
)

// AggregationPeriod represents different time periods for aggregation
type AggregationPeriod string

const (
	PeriodDaily   AggregationPeriod = "daily"
	PeriodWeekly  AggregationPeriod = "weekly"
	PeriodMonthly AggregationPeriod = "monthly"
)

func weekKeyOf(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// AggregatedData is a rollup of onboarding KPIs for one period.
type AggregatedData struct {
	Period    AggregationPeriod `json:"period"`
	Key       string            `json:"key"` // e.g. "2026-03-10" for daily, "2026-W11" for weekly
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`

	ActiveCrew          int              `json:"active_crew"`
	ScoreEvents         int64            `json:"score_events"`
	BadgesUnlocked      int64            `json:"badges_unlocked"`
	UnlocksByBadge      map[core.BadgeID]int64 `json:"unlocks_by_badge,omitempty"`
	RankUps             int64            `json:"rank_ups"`
	RankDistribution    map[string]int   `json:"rank_distribution,omitempty"`
	ChallengesCompleted int64            `json:"challenges_completed"`
	TasksRated          int64            `json:"tasks_rated"`
	TasksByDimension    map[string]int64 `json:"tasks_by_dimension,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AggregationEngine rolls CrewMetrics into daily/weekly/monthly buckets.
type AggregationEngine struct {
	mu sync.RWMutex

	metrics *CrewMetrics

	dailyAggregations   map[string]*AggregatedData
	weeklyAggregations  map[string]*AggregatedData
	monthlyAggregations map[string]*AggregatedData

	aggregationInterval time.Duration
	lastAggregation     time.Time
}

func NewAggregationEngine(metrics *CrewMetrics, aggregationInterval time.Duration) *AggregationEngine {
	return &AggregationEngine{
		metrics:             metrics,
		dailyAggregations:   make(map[string]*AggregatedData),
		weeklyAggregations:  make(map[string]*AggregatedData),
		monthlyAggregations: make(map[string]*AggregatedData),
		aggregationInterval: aggregationInterval,
		lastAggregation:     time.Now(),
	}
}

// OnEvent forwards events to the underlying metrics hook.
func (ae *AggregationEngine) OnEvent(e core.Event) {
	ae.metrics.OnEvent(e)
}

// AggregateNow forces an immediate aggregation of all periods.
func (ae *AggregationEngine) AggregateNow() error {
	return ae.aggregateAt(time.Now().UTC())
}

func (ae *AggregationEngine) aggregateAt(now time.Time) error {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	ae.aggregateDaily(now)
	ae.aggregateWeekly(now)
	ae.aggregateMonthly(now)

	ae.lastAggregation = now
	return nil
}

func (ae *AggregationEngine) aggregateDaily(now time.Time) {
	now = now.UTC()
	today := now.Format("2006-01-02")
	startTime := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	data := ae.newData(PeriodDaily, today, startTime, startTime.Add(24*time.Hour), now)
	data.ActiveCrew = ae.metrics.GetDailyActiveCrew(today)
	ae.addDay(data, today)

	ae.dailyAggregations[today] = data
}

func (ae *AggregationEngine) aggregateWeekly(now time.Time) {
	now = now.UTC()
	year, week := now.ISOWeek()
	weekKey := weekKeyOf(year, week)

	// Week starts Monday.
	daysSinceMonday := int(now.Weekday()-time.Monday) % 7
	if daysSinceMonday < 0 {
		daysSinceMonday += 7
	}
	startTime := time.Date(now.Year(), now.Month(), now.Day()-daysSinceMonday, 0, 0, 0, 0, time.UTC)

	data := ae.newData(PeriodWeekly, weekKey, startTime, startTime.Add(7*24*time.Hour), now)
	data.ActiveCrew = ae.metrics.GetWeeklyActiveCrew(weekKey)
	for i := 0; i < 7; i++ {
		ae.addDay(data, startTime.AddDate(0, 0, i).Format("2006-01-02"))
	}

	ae.weeklyAggregations[weekKey] = data
}

func (ae *AggregationEngine) aggregateMonthly(now time.Time) {
	now = now.UTC()
	monthKey := now.Format("2006-01")

	startTime := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endTime := startTime.AddDate(0, 1, 0)

	data := ae.newData(PeriodMonthly, monthKey, startTime, endTime, now)
	data.ActiveCrew = ae.metrics.GetMonthlyActiveCrew(monthKey)

	days := int(endTime.Sub(startTime).Hours() / 24)
	for i := 0; i < days; i++ {
		ae.addDay(data, startTime.AddDate(0, 0, i).Format("2006-01-02"))
	}

	ae.monthlyAggregations[monthKey] = data
}

func (ae *AggregationEngine) newData(period AggregationPeriod, key string, start, end, now time.Time) *AggregatedData {
	return &AggregatedData{
		Period:           period,
		Key:              key,
		StartTime:        start,
		EndTime:          end,
		CreatedAt:        now,
		UnlocksByBadge:   ae.metrics.GetUnlocksByBadge(),
		RankDistribution: ae.metrics.GetRankDistribution(),
		TasksByDimension: ae.metrics.GetTasksByDimension(),
	}
}

func (ae *AggregationEngine) addDay(data *AggregatedData, dayKey string) {
	data.ScoreEvents += ae.metrics.GetScoreEventsByDay(dayKey)
	data.BadgesUnlocked += ae.metrics.GetBadgesUnlockedByDay(dayKey)
	data.RankUps += ae.metrics.GetRankUpsByDay(dayKey)
	data.ChallengesCompleted += ae.metrics.GetChallengesCompletedByDay(dayKey)
	data.TasksRated += ae.metrics.GetTasksRatedByDay(dayKey)
}

// GetAggregatedData returns aggregated data for a specific period and key.
func (ae *AggregationEngine) GetAggregatedData(period AggregationPeriod, key string) (*AggregatedData, bool) {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	aggregations := ae.bucketFor(period)
	if aggregations == nil {
		return nil, false
	}
	data, exists := aggregations[key]
	return data, exists
}

// GetAllAggregatedData returns all aggregated data for a specific period.
func (ae *AggregationEngine) GetAllAggregatedData(period AggregationPeriod) []*AggregatedData {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	aggregations := ae.bucketFor(period)
	result := make([]*AggregatedData, 0, len(aggregations))
	for _, data := range aggregations {
		result = append(result, data)
	}
	return result
}

func (ae *AggregationEngine) bucketFor(period AggregationPeriod) map[string]*AggregatedData {
	switch period {
	case PeriodDaily:
		return ae.dailyAggregations
	case PeriodWeekly:
		return ae.weeklyAggregations
	case PeriodMonthly:
		return ae.monthlyAggregations
	default:
		return nil
	}
}

// Start begins periodic aggregation and blocks until the context is done.
func (ae *AggregationEngine) Start(ctx context.Context) {
	ticker := time.NewTicker(ae.aggregationInterval)
	defer ticker.Stop()

	_ = ae.AggregateNow()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = ae.AggregateNow()
		}
	}
}

// ExportData exports aggregated data to JSON format.
func (ae *AggregationEngine) ExportData(period AggregationPeriod) ([]byte, error) {
	data := ae.GetAllAggregatedData(period)
	return json.MarshalIndent(data, "", "  ")
}
