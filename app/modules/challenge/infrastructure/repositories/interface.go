package challengedb

import (
	"context"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// StartOutcome reports what the start transaction changed.
type StartOutcome struct {
	Challenge   *challengedomain.Challenge
	DemotedIDs  []int64
	GoalWeek    *challengedomain.Week
	FirstWeek   *challengedomain.Week
	GuildUpdate bool
}

// ImportedWeek pairs a week number with the thread it was found under.
type ImportedWeek struct {
	WeekNumber int
	ThreadID   sharedtypes.ThreadID
}

// Repository is the challenge/week persistence port. Start, Stop, and
// CreateImported are transactional: they also maintain the guild row's
// current_challenge_id reference so the at-most-one-current invariant
// cannot be observed half-applied.
type Repository interface {
	CreateChallenge(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error)
	GetChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error)
	GetCurrentChallenge(ctx context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error)
	ListChallenges(ctx context.Context, guildID sharedtypes.GuildID) ([]*challengedomain.Challenge, error)

	StartChallenge(ctx context.Context, id int64) (*StartOutcome, error)
	StopChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error)
	DeactivateChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error)

	// CreateImported persists a backfilled challenge plus one week per
	// matched thread in a single transaction. The challenge is stored
	// inactive.
	CreateImported(ctx context.Context, challenge *challengedomain.Challenge, weeks []ImportedWeek) (*challengedomain.Challenge, error)

	GetWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error)
	GetWeekByID(ctx context.Context, id int64) (*challengedomain.Week, error)
	GetWeekByThread(ctx context.Context, threadID sharedtypes.ThreadID) (*challengedomain.Week, error)

	// EnsureWeek creates the week row if absent and returns it either way.
	// Concurrent callers race on the unique constraint; the loser reads
	// the winner's row.
	EnsureWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error)

	SetWeekThread(ctx context.Context, weekID int64, threadID sharedtypes.ThreadID) error
	MarkRankingPublished(ctx context.Context, weekID int64) error

	ListWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error)
	// ListUnpublishedWeeks returns scored weeks (number >= 1) with a
	// thread and rankingPublished = false, ordered by week number.
	ListUnpublishedWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error)
}
