package challengeservice

import (
	"context"
	"errors"
	"sort"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

var errStorage = errors.New("storage unavailable")

// fakeChallengeRepo is an in-memory challenge/week store mirroring the
// transactional behavior of the real repository.
type fakeChallengeRepo struct {
	challenges map[int64]*challengedomain.Challenge
	weeks      map[int64]*challengedomain.Week
	nextID     int64
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		challenges: make(map[int64]*challengedomain.Challenge),
		weeks:      make(map[int64]*challengedomain.Week),
	}
}

func (f *fakeChallengeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeChallengeRepo) CreateChallenge(_ context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	for _, c := range f.challenges {
		if c.GuildID == challenge.GuildID && c.Semester == challenge.Semester {
			return nil, challengedb.ErrDuplicateSemester
		}
	}
	stored := *challenge
	stored.ID = f.id()
	f.challenges[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeChallengeRepo) GetChallenge(_ context.Context, id int64) (*challengedomain.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeChallengeRepo) GetCurrentChallenge(_ context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error) {
	for _, c := range f.challenges {
		if c.GuildID == guildID && c.Current {
			out := *c
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeChallengeRepo) ListChallenges(_ context.Context, guildID sharedtypes.GuildID) ([]*challengedomain.Challenge, error) {
	var out []*challengedomain.Challenge
	for _, c := range f.challenges {
		if c.GuildID == guildID {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Semester < out[j].Semester })
	return out, nil
}

func (f *fakeChallengeRepo) StartChallenge(ctx context.Context, id int64) (*challengedb.StartOutcome, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	if c.Started {
		return nil, challengedomain.ErrAlreadyStarted
	}

	outcome := &challengedb.StartOutcome{}
	for _, sibling := range f.challenges {
		if sibling.GuildID == c.GuildID && sibling.Current && sibling.ID != id {
			sibling.Current = false
			sibling.Active = false
			outcome.DemotedIDs = append(outcome.DemotedIDs, sibling.ID)
		}
	}
	c.Started = true
	c.Active = true
	c.Current = true
	outcome.GuildUpdate = true

	goalWeek, err := f.EnsureWeek(ctx, id, challengedomain.GoalWeekNumber)
	if err != nil {
		return nil, err
	}
	firstWeek, err := f.EnsureWeek(ctx, id, 1)
	if err != nil {
		return nil, err
	}

	started := *c
	outcome.Challenge = &started
	outcome.GoalWeek = goalWeek
	outcome.FirstWeek = firstWeek
	return outcome, nil
}

func (f *fakeChallengeRepo) StopChallenge(_ context.Context, id int64) (*challengedomain.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	if !c.Started {
		return nil, challengedomain.ErrNotStarted
	}
	c.Active = false
	c.Current = false
	out := *c
	return &out, nil
}

func (f *fakeChallengeRepo) DeactivateChallenge(_ context.Context, id int64) (*challengedomain.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	c.Active = false
	out := *c
	return &out, nil
}

func (f *fakeChallengeRepo) CreateImported(ctx context.Context, challenge *challengedomain.Challenge, weeks []challengedb.ImportedWeek) (*challengedomain.Challenge, error) {
	created, err := f.CreateChallenge(ctx, challenge)
	if err != nil {
		return nil, err
	}
	for _, iw := range weeks {
		week := &challengedomain.Week{
			ID:          f.id(),
			ChallengeID: created.ID,
			WeekNumber:  iw.WeekNumber,
			ThreadID:    iw.ThreadID,
		}
		f.weeks[week.ID] = week
	}
	return created, nil
}

func (f *fakeChallengeRepo) GetWeek(_ context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	for _, w := range f.weeks {
		if w.ChallengeID == challengeID && w.WeekNumber == weekNumber {
			out := *w
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeChallengeRepo) GetWeekByID(_ context.Context, id int64) (*challengedomain.Week, error) {
	w, ok := f.weeks[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	out := *w
	return &out, nil
}

func (f *fakeChallengeRepo) GetWeekByThread(_ context.Context, threadID sharedtypes.ThreadID) (*challengedomain.Week, error) {
	for _, w := range f.weeks {
		if w.ThreadID == threadID {
			out := *w
			return &out, nil
		}
	}
	return nil, challengedb.ErrNotFound
}

func (f *fakeChallengeRepo) EnsureWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	if existing, err := f.GetWeek(ctx, challengeID, weekNumber); err == nil {
		return existing, nil
	}
	week := &challengedomain.Week{
		ID:          f.id(),
		ChallengeID: challengeID,
		WeekNumber:  weekNumber,
	}
	f.weeks[week.ID] = week
	out := *week
	return &out, nil
}

func (f *fakeChallengeRepo) SetWeekThread(_ context.Context, weekID int64, threadID sharedtypes.ThreadID) error {
	w, ok := f.weeks[weekID]
	if !ok {
		return challengedb.ErrNoRowsAffected
	}
	w.ThreadID = threadID
	return nil
}

func (f *fakeChallengeRepo) MarkRankingPublished(_ context.Context, weekID int64) error {
	w, ok := f.weeks[weekID]
	if !ok {
		return challengedb.ErrNoRowsAffected
	}
	w.RankingPublished = true
	return nil
}

func (f *fakeChallengeRepo) ListWeeks(_ context.Context, challengeID int64) ([]*challengedomain.Week, error) {
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

func (f *fakeChallengeRepo) ListUnpublishedWeeks(_ context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	weeks, _ := f.ListWeeks(context.Background(), challengeID)
	var out []*challengedomain.Week
	for _, w := range weeks {
		if w.WeekNumber >= 1 && w.HasThread() && !w.RankingPublished {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeGateway serves canned threads and messages.
type fakeGateway struct {
	platform.Disconnected

	threads    []platform.ThreadInfo
	messages   map[sharedtypes.ThreadID][]platform.ChannelMessage
	fetchCalls int
}

func (f *fakeGateway) ListThreads(context.Context, sharedtypes.ChannelID) ([]platform.ThreadInfo, error) {
	return f.threads, nil
}

func (f *fakeGateway) FetchMessages(_ context.Context, threadID sharedtypes.ThreadID, afterID sharedtypes.MessageID, limit int) ([]platform.ChannelMessage, error) {
	f.fetchCalls++
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

// fakeProcessor records replayed messages.
type fakeProcessor struct {
	calls  []sharedtypes.MessageID
	failID sharedtypes.MessageID
}

func (f *fakeProcessor) ProcessHistorical(_ context.Context, _ sharedtypes.ThreadID, msg platform.ChannelMessage) (results.OperationResult, error) {
	if msg.ID == f.failID {
		return results.OperationResult{}, errStorage
	}
	f.calls = append(f.calls, msg.ID)
	if msg.Content == "" {
		return results.FailureResult("skipped"), nil
	}
	return results.SuccessResult("processed"), nil
}
