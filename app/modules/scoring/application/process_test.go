package scoringservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

const (
	testThread sharedtypes.ThreadID = "thread-1"
	testWeekID int64                = 10
)

func newTestService(t *testing.T) (*ScoringService, *fakeLogRepo) {
	t.Helper()
	logs := newFakeLogRepo()
	emojis := &fakeEmojiRepo{config: []scoringdomain.Emoji{
		{ID: 1, Code: "🍅", Points: 1, Category: scoringdomain.CategoryPomodoro, Active: true},
		{ID: 2, Code: "⭐", Points: 2, Category: scoringdomain.CategoryBonus, Active: true},
		{ID: 3, Code: "🎯", Points: 5, Category: scoringdomain.CategoryGoal, Active: true},
	}}
	resolver := &fakeResolver{
		byThread: map[sharedtypes.ThreadID]*ResolvedWeek{
			testThread: {WeekID: testWeekID, WeekNumber: 3, ChallengeID: 1, GuildID: "guild-1", Semester: 2, ChallengeActive: true},
		},
		byWeekID: map[int64]*ResolvedWeek{
			testWeekID: {WeekID: testWeekID, WeekNumber: 3, ChallengeID: 1, GuildID: "guild-1", Semester: 2, ChallengeActive: true},
		},
	}
	return NewScoringService(logs, emojis, resolver, observability.NewForTests()), logs
}

func input(messageID sharedtypes.MessageID, content string) ProcessInput {
	return ProcessInput{
		ChannelID: sharedtypes.ChannelID(testThread),
		MessageID: messageID,
		UserID:    "user-1",
		Content:   content,
	}
}

func TestProcessMessageLogsPoints(t *testing.T) {
	svc, logs := newTestService(t)

	result, err := svc.ProcessMessage(context.Background(), input("m1", "🍅🍅🍅"))
	require.NoError(t, err)

	payload, ok := result.Success.(*MessageProcessedPayload)
	require.True(t, ok, "expected success, got %+v", result)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 3}, payload.Totals)
	assert.Equal(t, testWeekID, payload.WeekID)

	stored, err := logs.GetLog(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 3}, stored.Totals)
}

func TestProcessMessageIsIdempotent(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	first, err := svc.ProcessMessage(ctx, input("m1", "🍅"))
	require.NoError(t, err)
	require.NotNil(t, first.Success)

	// Same event delivered again: no double count, even with new content.
	second, err := svc.ProcessMessage(ctx, input("m1", "🍅🍅🍅"))
	require.NoError(t, err)
	skipped, ok := second.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyProcessed, skipped.Reason)

	stored, err := logs.GetLog(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 1}, stored.Totals)
}

func TestProcessMessageForceOverwrites(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, input("m1", "🍅"))
	require.NoError(t, err)

	forced := input("m1", "🍅🍅 ⭐")
	forced.Force = true
	result, err := svc.ProcessMessage(ctx, forced)
	require.NoError(t, err)

	payload, ok := result.Success.(*MessageProcessedPayload)
	require.True(t, ok)
	assert.True(t, payload.Updated)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 2, Bonus: 2}, payload.Totals)

	stored, err := logs.GetLog(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 2, Bonus: 2}, stored.Totals)
}

func TestProcessMessageSkipsOutsideWeekThreads(t *testing.T) {
	svc, _ := newTestService(t)

	in := input("m1", "🍅")
	in.ChannelID = "general-chat"
	result, err := svc.ProcessMessage(context.Background(), in)
	require.NoError(t, err)

	skipped, ok := result.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonNoActiveWeek, skipped.Reason)
}

func TestProcessMessageSkipsInactiveChallenge(t *testing.T) {
	svc, _ := newTestService(t)
	resolver := svc.resolver.(*fakeResolver)
	resolver.byThread[testThread].ChallengeActive = false

	result, err := svc.ProcessMessage(context.Background(), input("m1", "🍅"))
	require.NoError(t, err)

	skipped, ok := result.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonChallengeInactive, skipped.Reason)
}

func TestProcessHistoricalAllowsInactiveChallenge(t *testing.T) {
	svc, logs := newTestService(t)
	resolver := svc.resolver.(*fakeResolver)
	resolver.byThread[testThread].ChallengeActive = false

	result, err := svc.ProcessHistorical(context.Background(), testThread, historicalMessage("m1", "🍅🍅"))
	require.NoError(t, err)
	require.NotNil(t, result.Success)

	stored, err := logs.GetLog(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 2}, stored.Totals)
}

func TestProcessMessageSkipsEmojiFreeMessages(t *testing.T) {
	svc, logs := newTestService(t)

	result, err := svc.ProcessMessage(context.Background(), input("m1", "no sessions today"))
	require.NoError(t, err)

	skipped, ok := result.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonNoEmojiDetected, skipped.Reason)
	assert.Empty(t, logs.logs)
}

func TestProcessMessageLosingInsertRace(t *testing.T) {
	svc, logs := newTestService(t)
	logs.racingInsert = true

	result, err := svc.ProcessMessage(context.Background(), input("m1", "🍅"))
	require.NoError(t, err)

	skipped, ok := result.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyProcessed, skipped.Reason)
}

func TestUpdateMessageRecomputes(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, input("m1", "🍅"))
	require.NoError(t, err)

	result, err := svc.UpdateMessage(ctx, "m1", "🍅🍅🍅 🎯")
	require.NoError(t, err)

	payload, ok := result.Success.(*MessageProcessedPayload)
	require.True(t, ok)
	assert.True(t, payload.Updated)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 3, Goal: 5}, payload.Totals)

	stored, err := logs.GetLog(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.PointTotals{Pomodoro: 3, Goal: 5}, stored.Totals)
}

func TestUpdateMessageRemovesWhenEmojiGone(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, input("m1", "🍅"))
	require.NoError(t, err)

	result, err := svc.UpdateMessage(ctx, "m1", "edited the emoji away")
	require.NoError(t, err)

	payload, ok := result.Success.(*MessageProcessedPayload)
	require.True(t, ok)
	assert.True(t, payload.Removed)
	assert.Empty(t, logs.logs)
}

func TestUpdateMessageSkipsUnlogged(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.UpdateMessage(context.Background(), "never-seen", "🍅")
	require.NoError(t, err)

	skipped, ok := result.Failure.(*MessageSkippedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonNotLogged, skipped.Reason)
}

func TestDeleteMessageIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, input("m1", "🍅"))
	require.NoError(t, err)

	first, err := svc.DeleteMessage(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, first.Success.(*MessageDeletedPayload).Deleted)

	second, err := svc.DeleteMessage(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, second.Success.(*MessageDeletedPayload).Deleted)
}
