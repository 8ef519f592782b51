package automation

import (
	"context"
	"fmt"
	"sort"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	leaderboardservice "github.com/focus-guild/pomo-bot/app/modules/leaderboard/application"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// fakeRepo is a minimal in-memory challenge/week store.
type fakeRepo struct {
	challenges map[int64]*challengedomain.Challenge
	weeks      map[int64]*challengedomain.Week
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		challenges: make(map[int64]*challengedomain.Challenge),
		weeks:      make(map[int64]*challengedomain.Week),
	}
}

func (f *fakeRepo) addChallenge(c *challengedomain.Challenge) *challengedomain.Challenge {
	f.nextID++
	c.ID = f.nextID
	f.challenges[c.ID] = c
	return c
}

func (f *fakeRepo) addWeek(w *challengedomain.Week) *challengedomain.Week {
	f.nextID++
	w.ID = f.nextID
	f.weeks[w.ID] = w
	return w
}

func (f *fakeRepo) CreateChallenge(context.Context, *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	panic("not used")
}

func (f *fakeRepo) GetChallenge(_ context.Context, id int64) (*challengedomain.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeRepo) GetCurrentChallenge(_ context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error) {
	for _, c := range f.challenges {
		if c.GuildID == guildID && c.Current {
			out := *c
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeRepo) ListChallenges(context.Context, sharedtypes.GuildID) ([]*challengedomain.Challenge, error) {
	panic("not used")
}

func (f *fakeRepo) StartChallenge(context.Context, int64) (*challengedb.StartOutcome, error) {
	panic("not used")
}

func (f *fakeRepo) StopChallenge(context.Context, int64) (*challengedomain.Challenge, error) {
	panic("not used")
}

func (f *fakeRepo) DeactivateChallenge(context.Context, int64) (*challengedomain.Challenge, error) {
	panic("not used")
}

func (f *fakeRepo) CreateImported(context.Context, *challengedomain.Challenge, []challengedb.ImportedWeek) (*challengedomain.Challenge, error) {
	panic("not used")
}

func (f *fakeRepo) GetWeek(_ context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	for _, w := range f.weeks {
		if w.ChallengeID == challengeID && w.WeekNumber == weekNumber {
			out := *w
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeRepo) GetWeekByID(_ context.Context, id int64) (*challengedomain.Week, error) {
	w, ok := f.weeks[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	out := *w
	return &out, nil
}

func (f *fakeRepo) GetWeekByThread(_ context.Context, threadID sharedtypes.ThreadID) (*challengedomain.Week, error) {
	for _, w := range f.weeks {
		if w.ThreadID == threadID {
			out := *w
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeRepo) EnsureWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	if existing, err := f.GetWeek(ctx, challengeID, weekNumber); err == nil {
		return existing, nil
	}
	w := f.addWeek(&challengedomain.Week{ChallengeID: challengeID, WeekNumber: weekNumber})
	out := *w
	return &out, nil
}

func (f *fakeRepo) SetWeekThread(_ context.Context, weekID int64, threadID sharedtypes.ThreadID) error {
	w, ok := f.weeks[weekID]
	if !ok {
		return challengedb.ErrNoRowsAffected
	}
	w.ThreadID = threadID
	return nil
}

func (f *fakeRepo) MarkRankingPublished(_ context.Context, weekID int64) error {
	w, ok := f.weeks[weekID]
	if !ok {
		return challengedb.ErrNoRowsAffected
	}
	w.RankingPublished = true
	return nil
}

func (f *fakeRepo) ListWeeks(_ context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	var out []*challengedomain.Week
	for _, w := range f.weeks {
		if w.ChallengeID == challengeID {
			ww := *w
			out = append(out, &ww)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (f *fakeRepo) ListUnpublishedWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	weeks, _ := f.ListWeeks(ctx, challengeID)
	var out []*challengedomain.Week
	for _, w := range weeks {
		if w.WeekNumber >= 1 && w.HasThread() && !w.RankingPublished {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeGateway records outbound calls. Failures are returned as
// permanent backoff errors so tests skip the retry sleeps.
type fakeGateway struct {
	platform.Disconnected

	createdThreads []string
	sentMessages   []string
	sentFiles      []string
	nextThread     int

	messages map[sharedtypes.ThreadID][]platform.ChannelMessage

	failSendFile error
}

func (f *fakeGateway) CreateThread(_ context.Context, _ sharedtypes.ChannelID, name string) (sharedtypes.ThreadID, error) {
	f.createdThreads = append(f.createdThreads, name)
	f.nextThread++
	return sharedtypes.ThreadID(fmt.Sprintf("thread-%d", f.nextThread)), nil
}

func (f *fakeGateway) SendMessage(_ context.Context, _ sharedtypes.ChannelID, content string) error {
	f.sentMessages = append(f.sentMessages, content)
	return nil
}

func (f *fakeGateway) SendFile(_ context.Context, _ sharedtypes.ChannelID, content, _ string, _ []byte) error {
	if f.failSendFile != nil {
		return f.failSendFile
	}
	f.sentFiles = append(f.sentFiles, content)
	return nil
}

func (f *fakeGateway) FetchMessages(_ context.Context, threadID sharedtypes.ThreadID, afterID sharedtypes.MessageID, limit int) ([]platform.ChannelMessage, error) {
	history := f.messages[threadID]
	start := 0
	if afterID != "" {
		for i, msg := range history {
			if msg.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(history) {
		end = len(history)
	}
	return history[start:end], nil
}

// fakeReconciler records reconciled weeks.
type fakeReconciler struct {
	weekIDs  []int64
	messages map[int64]int
}

func (f *fakeReconciler) ReconcileWeek(_ context.Context, weekID int64, messages []platform.ChannelMessage) (*scoringservice.ReconcileReport, error) {
	f.weekIDs = append(f.weekIDs, weekID)
	if f.messages == nil {
		f.messages = make(map[int64]int)
	}
	f.messages[weekID] = len(messages)
	return &scoringservice.ReconcileReport{WeekID: weekID, Reprocessed: len(messages)}, nil
}

// fakeRanker serves canned standings.
type fakeRanker struct {
	payload *leaderboardservice.WeekLeaderboardPayload
}

func (f *fakeRanker) WeekLeaderboard(_ context.Context, weekID int64) (results.OperationResult, error) {
	payload := f.payload
	if payload == nil {
		payload = &leaderboardservice.WeekLeaderboardPayload{
			Week: &scoringservice.ResolvedWeek{WeekID: weekID},
		}
	}
	return results.SuccessResult(payload), nil
}

// fakeGuilds lists a fixed guild set.
type fakeGuilds struct {
	guilds []*guilddomain.Guild
}

func (f *fakeGuilds) ListGuilds(context.Context) ([]*guilddomain.Guild, error) {
	return f.guilds, nil
}
