package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	"github.com/focus-guild/pomo-bot/internal/observability"
)

var threadWindow = Window{Weekday: time.Monday, Hour: 9, Minute: 0, Width: 15 * time.Minute}

func testGuild() *guilddomain.Guild {
	return &guilddomain.Guild{
		GuildID:    "guild-1",
		Timezone:   "Europe/Berlin",
		CategoryID: "category-1",
		PingRoleID: "role-1",
	}
}

func activeChallenge(repo *fakeRepo) *challengedomain.Challenge {
	return repo.addChallenge(&challengedomain.Challenge{
		GuildID:   "guild-1",
		Semester:  2,
		Theme:     "Spring sprint",
		StartDate: time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC),
		WeekCount: 12,
		Started:   true,
		Active:    true,
		Current:   true,
	})
}

// inWindow is Monday 09:05 Berlin time in week 2 of the test challenge.
func inWindow(t *testing.T) time.Time {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return time.Date(2024, time.March, 25, 9, 5, 0, 0, berlin)
}

func TestThreadCheckCreatesWeekThread(t *testing.T) {
	repo := newFakeRepo()
	challenge := activeChallenge(repo)
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	require.NoError(t, check.Run(context.Background(), testGuild(), inWindow(t)))

	assert.Equal(t, []string{"Q2-week2"}, gateway.createdThreads)

	week, err := repo.GetWeek(context.Background(), challenge.ID, 2)
	require.NoError(t, err)
	assert.True(t, week.HasThread())

	require.Len(t, gateway.sentMessages, 1)
	assert.Contains(t, gateway.sentMessages[0], "<@&role-1>")
	assert.Contains(t, gateway.sentMessages[0], "Week 2")
}

func TestThreadCheckIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	activeChallenge(repo)
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	now := inWindow(t)
	require.NoError(t, check.Run(context.Background(), testGuild(), now))
	require.NoError(t, check.Run(context.Background(), testGuild(), now.Add(5*time.Minute)))

	assert.Len(t, gateway.createdThreads, 1, "second tick in the window must not duplicate the thread")
}

func TestThreadCheckWeekOneAlsoCreatesGoalThread(t *testing.T) {
	repo := newFakeRepo()
	activeChallenge(repo)
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	berlin, _ := time.LoadLocation("Europe/Berlin")
	weekOneMonday := time.Date(2024, time.March, 18, 9, 5, 0, 0, berlin)
	require.NoError(t, check.Run(context.Background(), testGuild(), weekOneMonday))

	assert.Equal(t, []string{"Q2-week0-goals", "Q2-week1"}, gateway.createdThreads)
}

func TestThreadCheckOutsideWindowDoesNothing(t *testing.T) {
	repo := newFakeRepo()
	activeChallenge(repo)
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	berlin, _ := time.LoadLocation("Europe/Berlin")
	tuesday := time.Date(2024, time.March, 26, 9, 5, 0, 0, berlin)
	require.NoError(t, check.Run(context.Background(), testGuild(), tuesday))

	assert.Empty(t, gateway.createdThreads)
}

func TestThreadCheckSkipsWithoutCurrentChallenge(t *testing.T) {
	repo := newFakeRepo()
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	require.NoError(t, check.Run(context.Background(), testGuild(), inWindow(t)))
	assert.Empty(t, gateway.createdThreads)
}

func TestThreadCheckSkipsInactiveChallenge(t *testing.T) {
	repo := newFakeRepo()
	challenge := activeChallenge(repo)
	challenge.Active = false
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	require.NoError(t, check.Run(context.Background(), testGuild(), inWindow(t)))
	assert.Empty(t, gateway.createdThreads)
}

func TestThreadCheckSkipsPastFinalWeek(t *testing.T) {
	repo := newFakeRepo()
	challenge := activeChallenge(repo)
	challenge.EndDate = time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)
	challenge.WeekCount = 1
	gateway := &fakeGateway{}
	check := NewThreadCheck(repo, gateway, threadWindow, observability.NewForTests())

	// Monday after the challenge ended.
	require.NoError(t, check.Run(context.Background(), testGuild(), inWindow(t)))
	assert.Empty(t, gateway.createdThreads)
}
