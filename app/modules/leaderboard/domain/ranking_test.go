package leaderboarddomain

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

func log(user sharedtypes.UserID, totals scoringdomain.PointTotals) *scoringdomain.MessageLog {
	return &scoringdomain.MessageLog{
		MessageID: sharedtypes.MessageID(string(user) + "-msg"),
		UserID:    user,
		WeekID:    1,
		Totals:    totals,
	}
}

func TestBuildRankingAggregatesPerUser(t *testing.T) {
	logs := []*scoringdomain.MessageLog{
		log("alice", scoringdomain.PointTotals{Pomodoro: 2}),
		{MessageID: "alice-2", UserID: "alice", WeekID: 1, Totals: scoringdomain.PointTotals{Pomodoro: 1, Bonus: 2}},
		log("bob", scoringdomain.PointTotals{Pomodoro: 4}),
	}

	ranking := BuildRanking(logs)
	require.Len(t, ranking, 2)

	assert.Equal(t, sharedtypes.UserID("alice"), ranking[0].UserID)
	assert.Equal(t, 3, ranking[0].Pomodoro)
	assert.Equal(t, 2, ranking[0].Bonus)
	assert.Equal(t, 5, ranking[0].Scored())
	assert.Equal(t, 2, ranking[0].Messages)

	assert.Equal(t, sharedtypes.UserID("bob"), ranking[1].UserID)
	assert.Equal(t, 4, ranking[1].Scored())
}

func TestBuildRankingTieBreaksByUserID(t *testing.T) {
	logs := []*scoringdomain.MessageLog{
		log("zoe", scoringdomain.PointTotals{Pomodoro: 3}),
		log("amy", scoringdomain.PointTotals{Pomodoro: 3}),
		log("mia", scoringdomain.PointTotals{Pomodoro: 3}),
	}

	ranking := BuildRanking(logs)
	require.Len(t, ranking, 3)
	assert.Equal(t, sharedtypes.UserID("amy"), ranking[0].UserID)
	assert.Equal(t, sharedtypes.UserID("mia"), ranking[1].UserID)
	assert.Equal(t, sharedtypes.UserID("zoe"), ranking[2].UserID)
}

func TestBuildRankingGoalPointsDoNotRank(t *testing.T) {
	logs := []*scoringdomain.MessageLog{
		log("alice", scoringdomain.PointTotals{Pomodoro: 2, Goal: 50}),
		log("bob", scoringdomain.PointTotals{Pomodoro: 3}),
	}

	ranking := BuildRanking(logs)
	require.Len(t, ranking, 2)
	assert.Equal(t, sharedtypes.UserID("bob"), ranking[0].UserID)
	// Goal points inside a scored week neither rank nor declare a goal;
	// declared goals come from the goal-collection week via ApplyGoals.
	assert.Equal(t, 0, ranking[1].Goal)
}

func TestGoalsFromLogs(t *testing.T) {
	goalLogs := []*scoringdomain.MessageLog{
		log("alice", scoringdomain.PointTotals{Goal: 10}),
		{MessageID: "alice-2", UserID: "alice", WeekID: 1, Totals: scoringdomain.PointTotals{Goal: 5}},
		log("bob", scoringdomain.PointTotals{Pomodoro: 2}),
	}

	goals := GoalsFromLogs(goalLogs)
	assert.Equal(t, map[sharedtypes.UserID]int{"alice": 15}, goals)
}

func TestApplyGoalsOverlaysDeclaredGoals(t *testing.T) {
	ranking := []Entry{
		{UserID: "alice", Pomodoro: 3},
		{UserID: "bob", Pomodoro: 5},
	}

	ApplyGoals(ranking, map[sharedtypes.UserID]int{"alice": 10, "bob": 4})
	assert.Equal(t, 10, ranking[0].Goal)
	assert.False(t, ranking[0].GoalAchieved(), "3 scored points against a goal of 10")
	assert.Equal(t, 4, ranking[1].Goal)
	assert.True(t, ranking[1].GoalAchieved())
}

func TestBuildRankingEmpty(t *testing.T) {
	assert.Empty(t, BuildRanking(nil))
}

func TestEntryGoalAchieved(t *testing.T) {
	achieved := Entry{Pomodoro: 8, Bonus: 2, Goal: 10}
	assert.True(t, achieved.GoalAchieved())

	missed := Entry{Pomodoro: 8, Goal: 10}
	assert.False(t, missed.GoalAchieved())

	undeclared := Entry{Pomodoro: 8}
	assert.False(t, undeclared.GoalAchieved(), "no declared goal, nothing to achieve")
}

func TestBuildRankingRandomizedLedger(t *testing.T) {
	faker := gofakeit.New(7)

	users := make([]sharedtypes.UserID, 20)
	for i := range users {
		users[i] = sharedtypes.UserID(faker.Username())
	}

	var plain []*scoringdomain.MessageLog
	var joined []*scoringdomain.WeekMessageLog
	for i := 0; i < 200; i++ {
		l := &scoringdomain.MessageLog{
			MessageID: sharedtypes.MessageID(fmt.Sprintf("m%d", i)),
			UserID:    users[faker.IntRange(0, len(users)-1)],
			WeekID:    1,
			Totals: scoringdomain.PointTotals{
				Pomodoro: faker.IntRange(0, 5),
				Bonus:    faker.IntRange(0, 2),
			},
		}
		plain = append(plain, l)
		joined = append(joined, &scoringdomain.WeekMessageLog{MessageLog: *l, WeekNumber: 1})
	}

	ranking := BuildRanking(plain)
	for i := 1; i < len(ranking); i++ {
		prev, cur := ranking[i-1], ranking[i]
		ordered := prev.Scored() > cur.Scored() ||
			(prev.Scored() == cur.Scored() && prev.UserID < cur.UserID)
		assert.True(t, ordered, "entry %d out of order: %+v before %+v", i, prev, cur)
	}

	// A single-week challenge ranks the same cumulatively.
	if diff := cmp.Diff(ranking, BuildCumulativeRanking(joined)); diff != "" {
		t.Errorf("cumulative ranking diverged (-week +cumulative):\n%s", diff)
	}
}

func TestBuildCumulativeRanking(t *testing.T) {
	logs := []*scoringdomain.WeekMessageLog{
		{MessageLog: *log("alice", scoringdomain.PointTotals{Pomodoro: 2}), WeekNumber: 1},
		{MessageLog: scoringdomain.MessageLog{MessageID: "a2", UserID: "alice", WeekID: 2, Totals: scoringdomain.PointTotals{Pomodoro: 3}}, WeekNumber: 2},
		{MessageLog: *log("bob", scoringdomain.PointTotals{Pomodoro: 4}), WeekNumber: 1},
	}

	ranking := BuildCumulativeRanking(logs)
	require.Len(t, ranking, 2)
	assert.Equal(t, sharedtypes.UserID("alice"), ranking[0].UserID)
	assert.Equal(t, 5, ranking[0].Scored())
	assert.Equal(t, 2, ranking[0].Messages)
}
