package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	"github.com/focus-guild/pomo-bot/internal/observability"
)

// GuildSource lists the guilds the scheduler iterates.
type GuildSource interface {
	ListGuilds(ctx context.Context) ([]*guilddomain.Guild, error)
}

// Check is one idempotent per-guild automation step.
type Check interface {
	Run(ctx context.Context, guild *guilddomain.Guild, now time.Time) error
}

type namedCheck struct {
	name  string
	check Check
}

// Scheduler drives the automation checks on a fixed interval. Window
// membership is evaluated per guild in the guild's timezone, so one
// process serves communities in different timezones.
type Scheduler struct {
	guilds    GuildSource
	checks    []namedCheck
	interval  time.Duration
	defaultTZ string
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewScheduler creates the scheduler with the standard check set.
func NewScheduler(
	guilds GuildSource,
	threads *ThreadCheck,
	rankings *RankingCheck,
	interval time.Duration,
	defaultTZ string,
	obs *observability.Observability,
) *Scheduler {
	return &Scheduler{
		guilds: guilds,
		checks: []namedCheck{
			{name: "threads", check: threads},
			{name: "rankings", check: rankings},
		},
		interval:  interval,
		defaultTZ: defaultTZ,
		logger:    obs.Logger,
		metrics:   obs.Metrics,
		now:       time.Now,
	}
}

// Run ticks until the context is canceled. The first tick fires
// immediately so a restart inside a window does not lose it.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every check for every guild once. Exported so operators can
// trigger a pass out of band.
func (s *Scheduler) Tick(ctx context.Context) {
	guilds, err := s.guilds.ListGuilds(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduler could not list guilds", slog.Any("error", err))
		return
	}

	for _, guild := range guilds {
		localNow := s.now().In(guild.Location(s.defaultTZ))
		for _, nc := range s.checks {
			if err := s.runCheck(ctx, nc, guild, localNow); err != nil {
				s.metrics.SchedulerTicks.WithLabelValues(nc.name, "error").Inc()
				s.logger.ErrorContext(ctx, "Scheduler check failed",
					slog.String("check", nc.name),
					slog.String("guild_id", string(guild.GuildID)),
					slog.Any("error", err),
				)
				continue
			}
			s.metrics.SchedulerTicks.WithLabelValues(nc.name, "ok").Inc()
		}
	}
}

// runCheck isolates a check so a panic in one guild's pass cannot take
// down the loop.
func (s *Scheduler) runCheck(ctx context.Context, nc namedCheck, guild *guilddomain.Guild, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s check: %v", nc.name, r)
		}
	}()
	return nc.check.Run(ctx, guild, now)
}
