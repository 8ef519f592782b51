package scoringservice

import (
	"context"
	"errors"
	"log/slog"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ProcessMessage runs one message through matcher, calculator, and
// ledger. Without Force, a message that is already logged is a no-op:
// that is the core idempotency guarantee.
func (s *ScoringService) ProcessMessage(ctx context.Context, input ProcessInput) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "ProcessMessage", input.MessageID, func(ctx context.Context) (results.OperationResult, error) {
		week, err := s.resolver.ResolveThread(ctx, sharedtypes.ThreadID(input.ChannelID))
		if err != nil {
			return results.OperationResult{}, err
		}
		if week == nil {
			return s.skip(input.MessageID, ReasonNoActiveWeek), nil
		}
		return s.processResolved(ctx, week, input)
	})
}

// ProcessHistorical is the importer entry: same path as live events,
// keyed by thread.
func (s *ScoringService) ProcessHistorical(ctx context.Context, threadID sharedtypes.ThreadID, msg platform.ChannelMessage) (results.OperationResult, error) {
	return s.ProcessMessage(ctx, ProcessInput{
		ChannelID:     sharedtypes.ChannelID(threadID),
		MessageID:     msg.ID,
		UserID:        msg.UserID,
		Content:       msg.Content,
		AllowInactive: true,
	})
}

// processResolved applies the ledger write for a message whose week is
// already known.
func (s *ScoringService) processResolved(ctx context.Context, week *ResolvedWeek, input ProcessInput) (results.OperationResult, error) {
	return s.processResolvedIn(ctx, s.logs, week, input)
}

// processResolvedIn is processResolved against an explicit ledger
// scope. The reconciler passes its transaction-bound repository so the
// whole pass commits together.
func (s *ScoringService) processResolvedIn(ctx context.Context, logs scoringdb.MessageLogRepository, week *ResolvedWeek, input ProcessInput) (results.OperationResult, error) {
	if !week.ChallengeActive && !input.Force && !input.AllowInactive {
		return s.skip(input.MessageID, ReasonChallengeInactive), nil
	}

	existing, err := logs.GetLog(ctx, input.MessageID)
	if err != nil && !errors.Is(err, scoringdb.ErrNotFound) {
		return results.OperationResult{}, err
	}
	if existing != nil && !input.Force {
		return s.skip(input.MessageID, ReasonAlreadyProcessed), nil
	}

	totals, err := s.calculateTotals(ctx, week, input.Content)
	if err != nil {
		return results.OperationResult{}, err
	}

	// Zero-point messages are never logged; under force an existing row
	// whose edit removed all emoji is dropped instead of zeroed.
	if totals.Total() == 0 {
		if existing == nil {
			return s.skip(input.MessageID, ReasonNoEmojiDetected), nil
		}
		if _, err := logs.DeleteLog(ctx, input.MessageID); err != nil {
			return results.OperationResult{}, err
		}
		s.metrics.MessagesProcessed.WithLabelValues("removed").Inc()
		return results.SuccessResult(&MessageProcessedPayload{
			MessageID:  input.MessageID,
			WeekID:     week.WeekID,
			WeekNumber: week.WeekNumber,
			Removed:    true,
		}), nil
	}

	if existing == nil {
		log := &scoringdomain.MessageLog{
			MessageID: input.MessageID,
			UserID:    input.UserID,
			WeekID:    week.WeekID,
			Totals:    totals,
		}
		inserted, err := logs.InsertLog(ctx, log)
		if err != nil {
			return results.OperationResult{}, err
		}
		if !inserted {
			// Lost a race against a concurrent insert for the same ID.
			if !input.Force {
				return s.skip(input.MessageID, ReasonAlreadyProcessed), nil
			}
			if _, err := logs.UpdateLogPoints(ctx, input.MessageID, totals); err != nil {
				return results.OperationResult{}, err
			}
		}
		s.metrics.MessagesProcessed.WithLabelValues("processed").Inc()
		s.logger.DebugContext(ctx, "Message logged",
			slog.String("message_id", string(input.MessageID)),
			slog.Int64("week_id", week.WeekID),
			slog.Int("points", totals.Total()),
		)
		return results.SuccessResult(&MessageProcessedPayload{
			MessageID:  input.MessageID,
			WeekID:     week.WeekID,
			WeekNumber: week.WeekNumber,
			Totals:     totals,
		}), nil
	}

	if _, err := logs.UpdateLogPoints(ctx, input.MessageID, totals); err != nil {
		return results.OperationResult{}, err
	}
	s.metrics.MessagesProcessed.WithLabelValues("updated").Inc()
	return results.SuccessResult(&MessageProcessedPayload{
		MessageID:  input.MessageID,
		WeekID:     existing.WeekID,
		WeekNumber: week.WeekNumber,
		Totals:     totals,
		Updated:    true,
	}), nil
}

// UpdateMessage recomputes a logged message after an edit. Edits of
// unlogged messages and edits arriving after deactivation are no-ops.
func (s *ScoringService) UpdateMessage(ctx context.Context, messageID sharedtypes.MessageID, newContent string) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "UpdateMessage", messageID, func(ctx context.Context) (results.OperationResult, error) {
		existing, err := s.logs.GetLog(ctx, messageID)
		if err != nil && !errors.Is(err, scoringdb.ErrNotFound) {
			return results.OperationResult{}, err
		}
		if existing == nil {
			return s.skip(messageID, ReasonNotLogged), nil
		}

		week, err := s.resolver.ResolveWeekID(ctx, existing.WeekID)
		if err != nil {
			return results.OperationResult{}, err
		}
		if week == nil {
			return s.skip(messageID, ReasonNotLogged), nil
		}
		if !week.ChallengeActive {
			return s.skip(messageID, ReasonChallengeInactive), nil
		}

		totals, err := s.calculateTotals(ctx, week, newContent)
		if err != nil {
			return results.OperationResult{}, err
		}
		if totals.Total() == 0 {
			if _, err := s.logs.DeleteLog(ctx, messageID); err != nil {
				return results.OperationResult{}, err
			}
			s.metrics.MessagesProcessed.WithLabelValues("removed").Inc()
			return results.SuccessResult(&MessageProcessedPayload{
				MessageID:  messageID,
				WeekID:     week.WeekID,
				WeekNumber: week.WeekNumber,
				Removed:    true,
			}), nil
		}

		if _, err := s.logs.UpdateLogPoints(ctx, messageID, totals); err != nil {
			return results.OperationResult{}, err
		}
		s.metrics.MessagesProcessed.WithLabelValues("updated").Inc()
		return results.SuccessResult(&MessageProcessedPayload{
			MessageID:  messageID,
			WeekID:     week.WeekID,
			WeekNumber: week.WeekNumber,
			Totals:     totals,
			Updated:    true,
		}), nil
	})
}

// DeleteMessage removes a logged message. Deleting twice is harmless,
// as is a delete for a message that never logged.
func (s *ScoringService) DeleteMessage(ctx context.Context, messageID sharedtypes.MessageID) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "DeleteMessage", messageID, func(ctx context.Context) (results.OperationResult, error) {
		deleted, err := s.logs.DeleteLog(ctx, messageID)
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&MessageDeletedPayload{
			MessageID: messageID,
			Deleted:   deleted,
		}), nil
	})
}

func (s *ScoringService) calculateTotals(ctx context.Context, week *ResolvedWeek, content string) (scoringdomain.PointTotals, error) {
	config, err := s.emojis.ListActive(ctx, week.GuildID, week.ChallengeID)
	if err != nil {
		return scoringdomain.PointTotals{}, err
	}
	return scoringdomain.Calculate(scoringdomain.Match(content), config), nil
}
