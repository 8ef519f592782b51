package scoringservice

import (
	"context"
	"fmt"
	"log/slog"

	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ReconcileWeek rewrites a week's ledger entries to match the
// authoritative message list, normally fetched from the platform right
// before a ranking is generated. Logs whose messages are gone are
// deleted; every current message is force-reprocessed so missed edit
// events are picked up. Running it twice with the same input converges
// to the same ledger state.
func (s *ScoringService) ReconcileWeek(ctx context.Context, weekID int64, messages []platform.ChannelMessage) (*ReconcileReport, error) {
	week, err := s.resolver.ResolveWeekID(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("ReconcileWeek: %w", err)
	}
	if week == nil {
		return nil, fmt.Errorf("ReconcileWeek: week %d does not exist", weekID)
	}

	report := &ReconcileReport{WeekID: weekID}

	keep := make([]sharedtypes.MessageID, len(messages))
	for i, msg := range messages {
		keep[i] = msg.ID
	}

	// The stale delete and the rewrite commit together: a ranking read
	// right after reconciliation never sees a half-applied week.
	err = s.logs.RunInTx(ctx, func(ctx context.Context, logs scoringdb.MessageLogRepository) error {
		deleted, err := logs.DeleteStale(ctx, weekID, keep)
		if err != nil {
			return err
		}
		report.Deleted = deleted

		// Individual message failures are warnings; the pass continues.
		for _, msg := range messages {
			result, err := s.processResolvedIn(ctx, logs, week, ProcessInput{
				ChannelID: sharedtypes.ChannelID(""),
				MessageID: msg.ID,
				UserID:    msg.UserID,
				Content:   msg.Content,
				Force:     true,
			})
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("message %s: %v", msg.ID, err))
				continue
			}
			if result.Success != nil {
				report.Reprocessed++
			} else {
				report.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ReconcileWeek: %w", err)
	}

	s.logger.InfoContext(ctx, "Week reconciled",
		slog.Int64("week_id", weekID),
		slog.Int64("deleted", report.Deleted),
		slog.Int("reprocessed", report.Reprocessed),
		slog.Int("skipped", report.Skipped),
		slog.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}
