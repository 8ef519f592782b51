// Package app wires the modules together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/focus-guild/pomo-bot/api"
	"github.com/focus-guild/pomo-bot/app/eventbus"
	"github.com/focus-guild/pomo-bot/app/modules/automation"
	challengeservice "github.com/focus-guild/pomo-bot/app/modules/challenge/application"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	guildservice "github.com/focus-guild/pomo-bot/app/modules/guild/application"
	guilddb "github.com/focus-guild/pomo-bot/app/modules/guild/infrastructure/repositories"
	leaderboardservice "github.com/focus-guild/pomo-bot/app/modules/leaderboard/application"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	"github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/adapters"
	scoringhandlers "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/handlers"
	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/config"
	"github.com/focus-guild/pomo-bot/internal/observability"
)

// App holds the wired application.
type App struct {
	Config *config.Config
	Obs    *observability.Observability
	Bus    *eventbus.EventBus

	Guilds       *guildservice.GuildService
	Challenges   *challengeservice.ChallengeService
	Scoring      *scoringservice.ScoringService
	Leaderboards *leaderboardservice.LeaderboardService

	Scheduler *automation.Scheduler
	API       *api.Server

	db *bun.DB
}

// NewApp initializes storage, the event bus, and every module service.
// The gateway is injected: the production binary attaches the chat
// adapter, tools and the bare ops deployment pass platform.Disconnected.
func NewApp(cfg *config.Config, gateway platform.Gateway, obs *observability.Observability) (*App, error) {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())

	bus, err := eventbus.New(obs.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	guildRepo := guilddb.NewRepository(db)
	challengeRepo := challengedb.NewRepository(db)
	emojiRepo := scoringdb.NewEmojiRepository(db)
	logRepo := scoringdb.NewMessageLogRepository(db)

	weekLookup := adapters.NewWeekLookup(challengeRepo)

	guilds := guildservice.NewGuildService(guildRepo, obs)
	scoring := scoringservice.NewScoringService(logRepo, emojiRepo, weekLookup, obs)
	challenges := challengeservice.NewChallengeService(challengeRepo, gateway, scoring, challengeservice.ImportConfig{
		BatchSize:  cfg.Import.BatchSize,
		BatchPause: cfg.Import.BatchPause.Std(),
	}, obs)
	leaderboards := leaderboardservice.NewLeaderboardService(logRepo, scoring, weekLookup, obs)

	scoringhandlers.NewScoringHandlers(scoring, obs.Logger).Register(bus)

	scheduler := automation.NewScheduler(
		guildRepo,
		automation.NewThreadCheck(challengeRepo, gateway, automation.WindowFromConfig(cfg.Automation.ThreadCreation), obs),
		automation.NewRankingCheck(challengeRepo, gateway, scoring, leaderboards, automation.WindowFromConfig(cfg.Automation.Ranking), obs),
		cfg.Automation.TickInterval.Std(),
		cfg.Automation.DefaultTimezone,
		obs,
	)

	server := api.NewServer(cfg.HTTP.Addr, challenges, leaderboards, obs.Registry, obs.Logger)

	return &App{
		Config:       cfg,
		Obs:          obs,
		Bus:          bus,
		Guilds:       guilds,
		Challenges:   challenges,
		Scoring:      scoring,
		Leaderboards: leaderboards,
		Scheduler:    scheduler,
		API:          server,
		db:           db,
	}, nil
}

// Run starts the event router, the scheduler, and the HTTP server, and
// blocks until the context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() {
		if err := a.Bus.Run(ctx); err != nil {
			errCh <- fmt.Errorf("event bus: %w", err)
		}
	}()
	go func() {
		if err := a.Scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("scheduler: %w", err)
		}
	}()
	go func() {
		if err := a.API.ListenAndServe(); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the HTTP server, the bus, and the database.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.API.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := a.Bus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		a.Obs.Logger.Error("Shutdown finished with errors", slog.Any("error", firstErr))
	}
	return firstErr
}

// DB exposes the bun handle for tooling.
func (a *App) DB() *bun.DB {
	return a.db
}
