package challengedomain

import "github.com/focus-guild/pomo-bot/internal/sharedtypes"

// GoalWeekNumber is the goal-collection period preceding week 1. It is
// never ranked.
const GoalWeekNumber = 0

// Week is one scoring period of a challenge.
//
// ThreadID is empty until the platform thread exists; it doubles as the
// idempotency marker for the thread-creation check. RankingPublished is
// monotonic false-to-true and is only set after a ranking post succeeded.
type Week struct {
	ID               int64
	ChallengeID      int64
	WeekNumber       int
	ThreadID         sharedtypes.ThreadID
	RankingPublished bool
}

// IsGoalWeek reports whether this is the goal-collection period.
func (w *Week) IsGoalWeek() bool {
	return w.WeekNumber == GoalWeekNumber
}

// HasThread reports whether the platform thread exists.
func (w *Week) HasThread() bool {
	return w.ThreadID != ""
}
