// Package adapters bridges the scoring module onto other modules'
// repositories without importing their services.
package adapters

import (
	"context"
	"errors"
	"fmt"

	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// WeekLookup implements scoringservice.WeekResolver over the challenge
// repository.
type WeekLookup struct {
	repo challengedb.Repository
}

// NewWeekLookup constructs the adapter.
func NewWeekLookup(repo challengedb.Repository) *WeekLookup {
	return &WeekLookup{repo: repo}
}

func (l *WeekLookup) ResolveThread(ctx context.Context, threadID sharedtypes.ThreadID) (*scoringservice.ResolvedWeek, error) {
	if threadID == "" {
		return nil, nil
	}
	week, err := l.repo.GetWeekByThread(ctx, threadID)
	if errors.Is(err, challengedb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("week lookup by thread: %w", err)
	}
	return l.resolve(ctx, week.ID, week.WeekNumber, week.ChallengeID)
}

func (l *WeekLookup) ResolveWeekID(ctx context.Context, weekID int64) (*scoringservice.ResolvedWeek, error) {
	week, err := l.repo.GetWeekByID(ctx, weekID)
	if errors.Is(err, challengedb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("week lookup by id: %w", err)
	}
	return l.resolve(ctx, week.ID, week.WeekNumber, week.ChallengeID)
}

func (l *WeekLookup) resolve(ctx context.Context, weekID int64, weekNumber int, challengeID int64) (*scoringservice.ResolvedWeek, error) {
	challenge, err := l.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("week lookup challenge fetch: %w", err)
	}
	return &scoringservice.ResolvedWeek{
		WeekID:          weekID,
		WeekNumber:      weekNumber,
		ChallengeID:     challenge.ID,
		GuildID:         challenge.GuildID,
		Semester:        challenge.Semester,
		ChallengeActive: challenge.Active,
	}, nil
}
