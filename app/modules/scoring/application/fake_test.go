package scoringservice

import (
	"context"
	"slices"
	"sync"
	"time"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

func historicalMessage(id sharedtypes.MessageID, content string) platform.ChannelMessage {
	return platform.ChannelMessage{
		ID:        id,
		UserID:    "user-1",
		Content:   content,
		Timestamp: time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
	}
}

// fakeLogRepo is an in-memory ledger with programmable failures.
type fakeLogRepo struct {
	mu   sync.Mutex
	logs map[sharedtypes.MessageID]scoringdomain.MessageLog

	failGet    error
	failInsert error
	failUpdate error
	// failTx makes RunInTx fail at commit, discarding the scope.
	failTx error

	// racingInsert makes the next InsertLog report a lost race.
	racingInsert bool

	txCommits int
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[sharedtypes.MessageID]scoringdomain.MessageLog)}
}

func (f *fakeLogRepo) GetLog(_ context.Context, messageID sharedtypes.MessageID) (*scoringdomain.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	log, ok := f.logs[messageID]
	if !ok {
		return nil, scoringdb.ErrNotFound
	}
	out := log
	return &out, nil
}

func (f *fakeLogRepo) InsertLog(_ context.Context, log *scoringdomain.MessageLog) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return false, f.failInsert
	}
	if f.racingInsert {
		f.racingInsert = false
		f.logs[log.MessageID] = *log
		return false, nil
	}
	if _, exists := f.logs[log.MessageID]; exists {
		return false, nil
	}
	f.logs[log.MessageID] = *log
	return true, nil
}

func (f *fakeLogRepo) UpdateLogPoints(_ context.Context, messageID sharedtypes.MessageID, totals scoringdomain.PointTotals) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return false, f.failUpdate
	}
	log, ok := f.logs[messageID]
	if !ok {
		return false, nil
	}
	log.Totals = totals
	f.logs[messageID] = log
	return true, nil
}

func (f *fakeLogRepo) DeleteLog(_ context.Context, messageID sharedtypes.MessageID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.logs[messageID]
	delete(f.logs, messageID)
	return ok, nil
}

func (f *fakeLogRepo) ListWeekLogs(_ context.Context, weekID int64) ([]*scoringdomain.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*scoringdomain.MessageLog
	for _, log := range f.logs {
		if log.WeekID == weekID {
			l := log
			out = append(out, &l)
		}
	}
	slices.SortFunc(out, func(a, b *scoringdomain.MessageLog) int {
		switch {
		case a.MessageID < b.MessageID:
			return -1
		case a.MessageID > b.MessageID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *fakeLogRepo) ListChallengeLogs(context.Context, int64, int) ([]*scoringdomain.WeekMessageLog, error) {
	return nil, nil
}

func (f *fakeLogRepo) ListGoalLogs(context.Context, int64) ([]*scoringdomain.MessageLog, error) {
	return nil, nil
}

// RunInTx mimics transaction semantics: fn works on a copy of the
// ledger which replaces the original only when the whole pass commits.
func (f *fakeLogRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, logs scoringdb.MessageLogRepository) error) error {
	f.mu.Lock()
	tx := newFakeLogRepo()
	for id, log := range f.logs {
		tx.logs[id] = log
	}
	f.mu.Unlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if f.failTx != nil {
		return f.failTx
	}

	f.mu.Lock()
	f.logs = tx.logs
	f.txCommits++
	f.mu.Unlock()
	return nil
}

func (f *fakeLogRepo) DeleteStale(_ context.Context, weekID int64, keep []sharedtypes.MessageID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, log := range f.logs {
		if log.WeekID != weekID {
			continue
		}
		if !slices.Contains(keep, id) {
			delete(f.logs, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeEmojiRepo serves a fixed configuration.
type fakeEmojiRepo struct {
	config []scoringdomain.Emoji
	nextID int64

	failAdd error
}

func (f *fakeEmojiRepo) AddEmoji(_ context.Context, emoji *scoringdomain.Emoji) (*scoringdomain.Emoji, error) {
	if f.failAdd != nil {
		return nil, f.failAdd
	}
	for _, e := range f.config {
		if e.Active && e.Code == emoji.Code {
			return nil, scoringdb.ErrDuplicateEmoji
		}
	}
	f.nextID++
	created := *emoji
	created.ID = f.nextID
	created.Active = true
	f.config = append(f.config, created)
	return &created, nil
}

func (f *fakeEmojiRepo) DeactivateEmoji(_ context.Context, _ sharedtypes.GuildID, emojiID int64) (bool, error) {
	for i, e := range f.config {
		if e.ID == emojiID && e.Active {
			f.config[i].Active = false
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmojiRepo) ListActive(context.Context, sharedtypes.GuildID, int64) ([]scoringdomain.Emoji, error) {
	var out []scoringdomain.Emoji
	for _, e := range f.config {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmojiRepo) ListAll(context.Context, sharedtypes.GuildID) ([]scoringdomain.Emoji, error) {
	return f.config, nil
}

// fakeResolver maps threads and week IDs to resolved weeks.
type fakeResolver struct {
	byThread map[sharedtypes.ThreadID]*ResolvedWeek
	byWeekID map[int64]*ResolvedWeek
}

func (f *fakeResolver) ResolveThread(_ context.Context, threadID sharedtypes.ThreadID) (*ResolvedWeek, error) {
	return f.byThread[threadID], nil
}

func (f *fakeResolver) ResolveWeekID(_ context.Context, weekID int64) (*ResolvedWeek, error) {
	return f.byWeekID[weekID], nil
}
