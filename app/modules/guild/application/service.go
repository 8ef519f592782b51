// Package guildservice implements the guild configuration operations.
package guildservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	guilddb "github.com/focus-guild/pomo-bot/app/modules/guild/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// GuildService implements the guild operations.
type GuildService struct {
	repo    guilddb.Repository
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewGuildService creates a new GuildService.
func NewGuildService(repo guilddb.Repository, obs *observability.Observability) *GuildService {
	return &GuildService{
		repo:    repo,
		logger:  obs.Logger,
		metrics: obs.Metrics,
		tracer:  obs.Tracer,
	}
}

type operationFunc func(ctx context.Context) (results.OperationResult, error)

// withTelemetry wraps an operation with tracing, metrics, and panic
// recovery.
func (s *GuildService) withTelemetry(
	ctx context.Context,
	operationName string,
	guildID sharedtypes.GuildID,
	op operationFunc,
) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("guild_id", string(guildID)),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt("guild", operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("guild", operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("guild_id", string(guildID)),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure("guild", operationName)
			span.RecordError(err)
			result = results.OperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("guild_id", string(guildID)),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure("guild", operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}
