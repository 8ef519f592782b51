package challengeservice

import (
	"context"
	"errors"
	"log/slog"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ChallengeCreatedPayload reports a created challenge.
type ChallengeCreatedPayload struct {
	Challenge *challengedomain.Challenge
}

// ChallengeStartedPayload reports a started challenge: the demoted
// sibling IDs and the two initial weeks.
type ChallengeStartedPayload struct {
	Challenge  *challengedomain.Challenge
	DemotedIDs []int64
	GoalWeek   *challengedomain.Week
	FirstWeek  *challengedomain.Week
}

// ChallengeStatePayload reports a stop/deactivate transition.
type ChallengeStatePayload struct {
	Challenge *challengedomain.Challenge
}

// ChallengeFailurePayload carries a business-failure reason.
type ChallengeFailurePayload struct {
	GuildID     sharedtypes.GuildID
	ChallengeID int64
	Reason      string
}

// CreateChallenge validates and persists a new challenge. All three
// lifecycle booleans start false.
func (s *ChallengeService) CreateChallenge(ctx context.Context, input challengedomain.NewChallengeInput) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "CreateChallenge", input.GuildID, func(ctx context.Context) (results.OperationResult, error) {
		if err := input.Validate(s.now(), false); err != nil {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  err.Error(),
			}), nil
		}

		challenge := &challengedomain.Challenge{
			GuildID:   input.GuildID,
			Semester:  input.Semester,
			Theme:     input.Theme,
			StartDate: challengedomain.CivilDate(input.StartDate),
			EndDate:   challengedomain.CivilDate(input.EndDate),
			WeekCount: input.WeekCount,
		}
		created, err := s.repo.CreateChallenge(ctx, challenge)
		if errors.Is(err, challengedb.ErrDuplicateSemester) {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		s.logger.InfoContext(ctx, "Challenge created",
			slog.String("guild_id", string(created.GuildID)),
			slog.Int("semester", created.Semester),
			slog.Int("week_count", created.WeekCount),
		)
		return results.SuccessResult(&ChallengeCreatedPayload{Challenge: created}), nil
	})
}

// StartChallenge flips a challenge to started/active/current, demotes any
// current sibling, and creates weeks 0 and 1 (threads come later, from
// the scheduler).
func (s *ChallengeService) StartChallenge(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "StartChallenge", guildID, func(ctx context.Context) (results.OperationResult, error) {
		outcome, err := s.repo.StartChallenge(ctx, challengeID)
		if errors.Is(err, challengedomain.ErrAlreadyStarted) || errors.Is(err, challengedb.ErrNotFound) {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID:     guildID,
				ChallengeID: challengeID,
				Reason:      err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		s.logger.InfoContext(ctx, "Challenge started",
			slog.String("guild_id", string(guildID)),
			slog.Int64("challenge_id", challengeID),
			slog.Int("demoted", len(outcome.DemotedIDs)),
		)
		return results.SuccessResult(&ChallengeStartedPayload{
			Challenge:  outcome.Challenge,
			DemotedIDs: outcome.DemotedIDs,
			GoalWeek:   outcome.GoalWeek,
			FirstWeek:  outcome.FirstWeek,
		}), nil
	})
}

// StopChallenge ends a challenge: active and current drop, started stays
// as the history marker. Platform content is untouched.
func (s *ChallengeService) StopChallenge(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "StopChallenge", guildID, func(ctx context.Context) (results.OperationResult, error) {
		challenge, err := s.repo.StopChallenge(ctx, challengeID)
		if errors.Is(err, challengedomain.ErrNotStarted) || errors.Is(err, challengedb.ErrNotFound) {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID:     guildID,
				ChallengeID: challengeID,
				Reason:      err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&ChallengeStatePayload{Challenge: challenge}), nil
	})
}

// DeactivateChallenge pauses message processing without touching current
// or started, so the challenge stays visible.
func (s *ChallengeService) DeactivateChallenge(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "DeactivateChallenge", guildID, func(ctx context.Context) (results.OperationResult, error) {
		challenge, err := s.repo.DeactivateChallenge(ctx, challengeID)
		if errors.Is(err, challengedb.ErrNotFound) {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID:     guildID,
				ChallengeID: challengeID,
				Reason:      err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&ChallengeStatePayload{Challenge: challenge}), nil
	})
}

// GetCurrentChallenge returns the guild's current challenge, or nil.
func (s *ChallengeService) GetCurrentChallenge(ctx context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error) {
	challenge, err := s.repo.GetCurrentChallenge(ctx, guildID)
	if errors.Is(err, challengedb.ErrNotFound) {
		return nil, nil
	}
	return challenge, err
}

// ListChallenges returns all challenges of a guild, oldest semester first.
func (s *ChallengeService) ListChallenges(ctx context.Context, guildID sharedtypes.GuildID) ([]*challengedomain.Challenge, error) {
	return s.repo.ListChallenges(ctx, guildID)
}

// ListWeeks returns the weeks of a challenge.
func (s *ChallengeService) ListWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	return s.repo.ListWeeks(ctx, challengeID)
}
