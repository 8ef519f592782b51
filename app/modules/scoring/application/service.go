// Package scoringservice implements the message ledger, the week
// reconciler, and the emoji configuration operations.
package scoringservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ScoringService implements the ledger and reconciler.
type ScoringService struct {
	logs     scoringdb.MessageLogRepository
	emojis   scoringdb.EmojiRepository
	resolver WeekResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	logs scoringdb.MessageLogRepository,
	emojis scoringdb.EmojiRepository,
	resolver WeekResolver,
	obs *observability.Observability,
) *ScoringService {
	return &ScoringService{
		logs:     logs,
		emojis:   emojis,
		resolver: resolver,
		logger:   obs.Logger,
		metrics:  obs.Metrics,
		tracer:   obs.Tracer,
	}
}

type operationFunc func(ctx context.Context) (results.OperationResult, error)

func (s *ScoringService) withTelemetry(
	ctx context.Context,
	operationName string,
	messageID sharedtypes.MessageID,
	op operationFunc,
) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("message_id", string(messageID)),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt("scoring", operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("scoring", operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("message_id", string(messageID)),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure("scoring", operationName)
			span.RecordError(err)
			result = results.OperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("message_id", string(messageID)),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure("scoring", operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}

func (s *ScoringService) skip(messageID sharedtypes.MessageID, reason SkipReason) results.OperationResult {
	s.metrics.MessagesProcessed.WithLabelValues("skipped").Inc()
	return results.FailureResult(&MessageSkippedPayload{MessageID: messageID, Reason: reason})
}
