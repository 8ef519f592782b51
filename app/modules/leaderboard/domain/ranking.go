// Package leaderboarddomain holds the pure ranking logic.
package leaderboarddomain

import (
	"cmp"
	"slices"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Entry is one user's aggregated row. Goal is the target the user
// declared during goal collection, not points earned in the ranked
// week; ApplyGoals fills it in.
type Entry struct {
	UserID   sharedtypes.UserID
	Pomodoro int
	Bonus    int
	Goal     int
	Messages int
}

// Scored is the ranked total; goal points are informational.
func (e Entry) Scored() int {
	return e.Pomodoro + e.Bonus
}

// GoalAchieved reports whether the scored total reached a declared
// goal. Users who never declared one have nothing to achieve.
func (e Entry) GoalAchieved() bool {
	return e.Goal > 0 && e.Scored() >= e.Goal
}

// BuildRanking groups logs by user and sorts descending by scored total.
// Equal totals order ascending by user ID: a stable, documented
// tie-break instead of storage iteration order.
func BuildRanking(logs []*scoringdomain.MessageLog) []Entry {
	byUser := make(map[sharedtypes.UserID]*Entry)
	for _, log := range logs {
		entry, ok := byUser[log.UserID]
		if !ok {
			entry = &Entry{UserID: log.UserID}
			byUser[log.UserID] = entry
		}
		entry.Pomodoro += log.Totals.Pomodoro
		entry.Bonus += log.Totals.Bonus
		entry.Messages++
	}

	ranking := make([]Entry, 0, len(byUser))
	for _, entry := range byUser {
		ranking = append(ranking, *entry)
	}
	slices.SortFunc(ranking, func(a, b Entry) int {
		if c := cmp.Compare(b.Scored(), a.Scored()); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return ranking
}

// BuildCumulativeRanking flattens week-joined logs into one ranking.
func BuildCumulativeRanking(logs []*scoringdomain.WeekMessageLog) []Entry {
	flat := make([]*scoringdomain.MessageLog, len(logs))
	for i := range logs {
		flat[i] = &logs[i].MessageLog
	}
	return BuildRanking(flat)
}

// GoalsFromLogs sums declared goal points per user, normally over the
// goal-collection week's ledger.
func GoalsFromLogs(logs []*scoringdomain.MessageLog) map[sharedtypes.UserID]int {
	goals := make(map[sharedtypes.UserID]int)
	for _, log := range logs {
		if log.Totals.Goal > 0 {
			goals[log.UserID] += log.Totals.Goal
		}
	}
	return goals
}

// ApplyGoals overlays declared goals onto a ranking. Users without a
// declared goal keep Goal zero.
func ApplyGoals(ranking []Entry, goals map[sharedtypes.UserID]int) {
	for i := range ranking {
		ranking[i].Goal = goals[ranking[i].UserID]
	}
}
