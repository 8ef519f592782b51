// Package challengeservice implements the challenge lifecycle and the
// historical importer.
package challengeservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// MessageProcessor is the slice of the scoring ledger the importer needs.
// Historical messages go through the same path as live events.
type MessageProcessor interface {
	ProcessHistorical(ctx context.Context, threadID sharedtypes.ThreadID, msg platform.ChannelMessage) (results.OperationResult, error)
}

// ImportConfig controls historical pagination.
type ImportConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

// ChallengeService implements the lifecycle operations.
type ChallengeService struct {
	repo      challengedb.Repository
	gateway   platform.Gateway
	processor MessageProcessor
	importCfg ImportConfig
	limiter   *rate.Limiter
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(
	repo challengedb.Repository,
	gateway platform.Gateway,
	processor MessageProcessor,
	importCfg ImportConfig,
	obs *observability.Observability,
) *ChallengeService {
	if importCfg.BatchSize <= 0 {
		importCfg.BatchSize = 100
	}
	if importCfg.BatchPause <= 0 {
		importCfg.BatchPause = time.Second
	}
	return &ChallengeService{
		repo:      repo,
		gateway:   gateway,
		processor: processor,
		importCfg: importCfg,
		limiter:   rate.NewLimiter(rate.Every(importCfg.BatchPause), 1),
		logger:    obs.Logger,
		metrics:   obs.Metrics,
		tracer:    obs.Tracer,
		now:       time.Now,
	}
}

type operationFunc func(ctx context.Context) (results.OperationResult, error)

func (s *ChallengeService) withTelemetry(
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

	s.metrics.RecordOperationAttempt("challenge", operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("challenge", operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("guild_id", string(guildID)),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure("challenge", operationName)
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
		s.metrics.RecordOperationFailure("challenge", operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}
