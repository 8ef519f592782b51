// Package leaderboardservice aggregates ledger rows into weekly and
// cumulative standings and renders them for posting and export.
package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	leaderboarddomain "github.com/focus-guild/pomo-bot/app/modules/leaderboard/domain"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// LogSource is the slice of the ledger the leaderboard reads.
type LogSource interface {
	ListWeekLogs(ctx context.Context, weekID int64) ([]*scoringdomain.MessageLog, error)
	ListChallengeLogs(ctx context.Context, challengeID int64, uptoWeek int) ([]*scoringdomain.WeekMessageLog, error)
	ListGoalLogs(ctx context.Context, challengeID int64) ([]*scoringdomain.MessageLog, error)
}

// EmojiSource provides the active emoji configuration, used to pick the
// reward emoji that decorate the top ranks.
type EmojiSource interface {
	ActiveEmojiConfig(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) ([]scoringdomain.Emoji, error)
}

// WeekLeaderboardPayload is the result of a weekly aggregation.
type WeekLeaderboardPayload struct {
	Week    *scoringservice.ResolvedWeek
	Entries []leaderboarddomain.Entry
	Rewards []string
}

// CumulativeLeaderboardPayload is the result of a challenge-wide
// aggregation over weeks 1..UptoWeek.
type CumulativeLeaderboardPayload struct {
	ChallengeID int64
	UptoWeek    int
	Entries     []leaderboarddomain.Entry
}

// LeaderboardFailurePayload carries a business-failure reason.
type LeaderboardFailurePayload struct {
	Reason string
}

// LeaderboardService aggregates and renders standings.
type LeaderboardService struct {
	logs     LogSource
	emojis   EmojiSource
	resolver scoringservice.WeekResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	logs LogSource,
	emojis EmojiSource,
	resolver scoringservice.WeekResolver,
	obs *observability.Observability,
) *LeaderboardService {
	return &LeaderboardService{
		logs:     logs,
		emojis:   emojis,
		resolver: resolver,
		logger:   obs.Logger,
		metrics:  obs.Metrics,
		tracer:   obs.Tracer,
	}
}

type operationFunc func(ctx context.Context) (results.OperationResult, error)

func (s *LeaderboardService) withTelemetry(
	ctx context.Context,
	operationName string,
	op operationFunc,
) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt("leaderboard", operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("leaderboard", operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", slog.Any("error", err))
			s.metrics.RecordOperationFailure("leaderboard", operationName)
			span.RecordError(err)
			result = results.OperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure("leaderboard", operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}

// WeekLeaderboard aggregates one week's ledger into a ranking. A week
// that does not exist is a business failure; a week with no logs is a
// success with an empty ranking.
func (s *LeaderboardService) WeekLeaderboard(ctx context.Context, weekID int64) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "WeekLeaderboard", func(ctx context.Context) (results.OperationResult, error) {
		week, err := s.resolver.ResolveWeekID(ctx, weekID)
		if err != nil {
			return results.OperationResult{}, err
		}
		if week == nil {
			return results.FailureResult(&LeaderboardFailurePayload{
				Reason: fmt.Sprintf("week %d does not exist", weekID),
			}), nil
		}

		logs, err := s.logs.ListWeekLogs(ctx, weekID)
		if err != nil {
			return results.OperationResult{}, err
		}
		rewards, err := s.rewardEmoji(ctx, week.GuildID, week.ChallengeID)
		if err != nil {
			return results.OperationResult{}, err
		}
		goals, err := s.declaredGoals(ctx, week.ChallengeID)
		if err != nil {
			return results.OperationResult{}, err
		}

		entries := leaderboarddomain.BuildRanking(logs)
		leaderboarddomain.ApplyGoals(entries, goals)
		return results.SuccessResult(&WeekLeaderboardPayload{
			Week:    week,
			Entries: entries,
			Rewards: rewards,
		}), nil
	})
}

// CumulativeLeaderboard aggregates scored weeks 1..uptoWeek of one
// challenge into a single ranking.
func (s *LeaderboardService) CumulativeLeaderboard(ctx context.Context, challengeID int64, uptoWeek int) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "CumulativeLeaderboard", func(ctx context.Context) (results.OperationResult, error) {
		if uptoWeek < 1 {
			return results.FailureResult(&LeaderboardFailurePayload{
				Reason: "uptoWeek must be at least 1",
			}), nil
		}
		logs, err := s.logs.ListChallengeLogs(ctx, challengeID, uptoWeek)
		if err != nil {
			return results.OperationResult{}, err
		}
		goals, err := s.declaredGoals(ctx, challengeID)
		if err != nil {
			return results.OperationResult{}, err
		}

		entries := leaderboarddomain.BuildCumulativeRanking(logs)
		leaderboarddomain.ApplyGoals(entries, goals)
		return results.SuccessResult(&CumulativeLeaderboardPayload{
			ChallengeID: challengeID,
			UptoWeek:    uptoWeek,
			Entries:     entries,
		}), nil
	})
}

// declaredGoals reads each user's target from the goal-collection
// week's ledger.
func (s *LeaderboardService) declaredGoals(ctx context.Context, challengeID int64) (map[sharedtypes.UserID]int, error) {
	goalLogs, err := s.logs.ListGoalLogs(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("goal lookup: %w", err)
	}
	return leaderboarddomain.GoalsFromLogs(goalLogs), nil
}

// rewardEmoji returns the active reward emoji codes in configuration
// order. Rank n gets the nth code, ranks past the list go undecorated.
func (s *LeaderboardService) rewardEmoji(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) ([]string, error) {
	config, err := s.emojis.ActiveEmojiConfig(ctx, guildID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("reward emoji lookup: %w", err)
	}
	var rewards []string
	for _, emoji := range config {
		if emoji.Category == scoringdomain.CategoryReward {
			rewards = append(rewards, emoji.Code)
		}
	}
	return rewards, nil
}
