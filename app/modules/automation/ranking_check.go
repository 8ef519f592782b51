package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	leaderboardservice "github.com/focus-guild/pomo-bot/app/modules/leaderboard/application"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// fetchPageSize is the history page size used when re-reading a week
// thread before ranking it.
const fetchPageSize = 100

// Reconciler rewrites a week's ledger from the authoritative message
// list. Implemented by the scoring service.
type Reconciler interface {
	ReconcileWeek(ctx context.Context, weekID int64, messages []platform.ChannelMessage) (*scoringservice.ReconcileReport, error)
}

// Ranker aggregates a week into standings. Implemented by the
// leaderboard service.
type Ranker interface {
	WeekLeaderboard(ctx context.Context, weekID int64) (results.OperationResult, error)
}

// RankingCheck publishes rankings for ended, unpublished weeks inside
// the ranking window. The published flag is set only after the ranking
// message is posted, so a failed post is retried on the next tick; the
// reconciliation that ran before it is idempotent and simply runs
// again.
type RankingCheck struct {
	repo       challengedb.Repository
	gateway    platform.Gateway
	reconciler Reconciler
	ranker     Ranker
	window     Window
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewRankingCheck creates the check.
func NewRankingCheck(
	repo challengedb.Repository,
	gateway platform.Gateway,
	reconciler Reconciler,
	ranker Ranker,
	window Window,
	obs *observability.Observability,
) *RankingCheck {
	return &RankingCheck{
		repo:       repo,
		gateway:    gateway,
		reconciler: reconciler,
		ranker:     ranker,
		window:     window,
		logger:     obs.Logger,
		metrics:    obs.Metrics,
	}
}

// Run executes the check for one guild. now is the guild's local time.
func (c *RankingCheck) Run(ctx context.Context, guild *guilddomain.Guild, now time.Time) error {
	if !c.window.Contains(now) {
		return nil
	}

	challenge, err := c.repo.GetCurrentChallenge(ctx, guild.GuildID)
	if errors.Is(err, challengedb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ranking check: %w", err)
	}
	if !challenge.Active {
		return nil
	}

	weeks, err := c.repo.ListUnpublishedWeeks(ctx, challenge.ID)
	if err != nil {
		return fmt.Errorf("ranking check: %w", err)
	}

	// A week is rankable only strictly after its end date; failures on
	// one week do not block older or newer ones.
	today := civilDate(now)
	var errs []error
	for _, week := range weeks {
		if !today.After(challenge.WeekEndDate(week.WeekNumber)) {
			continue
		}
		if err := c.publishWeek(ctx, challenge, week); err != nil {
			c.logger.WarnContext(ctx, "Ranking publication failed, will retry next tick",
				slog.String("guild_id", string(guild.GuildID)),
				slog.Int("week", week.WeekNumber),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *RankingCheck) publishWeek(ctx context.Context, challenge *challengedomain.Challenge, week *challengedomain.Week) error {
	messages, err := c.fetchAll(ctx, week.ThreadID)
	if err != nil {
		return fmt.Errorf("week %d fetch: %w", week.WeekNumber, err)
	}
	if _, err := c.reconciler.ReconcileWeek(ctx, week.ID, messages); err != nil {
		return fmt.Errorf("week %d reconcile: %w", week.WeekNumber, err)
	}

	result, err := c.ranker.WeekLeaderboard(ctx, week.ID)
	if err != nil {
		return fmt.Errorf("week %d ranking: %w", week.WeekNumber, err)
	}
	payload, ok := result.Success.(*leaderboardservice.WeekLeaderboardPayload)
	if !ok {
		return fmt.Errorf("week %d ranking: unexpected result %T", week.WeekNumber, result.Failure)
	}

	text := leaderboardservice.FormatWeekRanking(challenge.Semester, week.WeekNumber, payload.Entries, payload.Rewards)
	chartPNG, err := leaderboardservice.GenerateStandingsChart(
		fmt.Sprintf("Q%d week %d", challenge.Semester, week.WeekNumber),
		payload.Entries,
		leaderboardservice.DefaultPalette,
	)
	if err != nil {
		// The text ranking carries all information; ship it without the
		// image rather than hold the week open.
		c.logger.WarnContext(ctx, "Standings chart rendering failed",
			slog.Int("week", week.WeekNumber),
			slog.Any("error", err),
		)
		chartPNG = nil
	}

	channelID := sharedtypes.ChannelID(week.ThreadID)
	if err := platform.RetryVoid(ctx, c.logger, "PublishRanking", func() error {
		if chartPNG == nil {
			return c.gateway.SendMessage(ctx, channelID, text)
		}
		filename := fmt.Sprintf("ranking-q%d-week%d.png", challenge.Semester, week.WeekNumber)
		return c.gateway.SendFile(ctx, channelID, text, filename, chartPNG)
	}); err != nil {
		return fmt.Errorf("week %d post: %w", week.WeekNumber, err)
	}

	if err := c.repo.MarkRankingPublished(ctx, week.ID); err != nil {
		return fmt.Errorf("week %d mark published: %w", week.WeekNumber, err)
	}
	c.metrics.RankingsPublished.Inc()
	c.logger.InfoContext(ctx, "Weekly ranking published",
		slog.Int64("week_id", week.ID),
		slog.Int("week", week.WeekNumber),
		slog.Int("entries", len(payload.Entries)),
	)
	return nil
}

func (c *RankingCheck) fetchAll(ctx context.Context, threadID sharedtypes.ThreadID) ([]platform.ChannelMessage, error) {
	var all []platform.ChannelMessage
	var after sharedtypes.MessageID
	for {
		page, err := platform.WithRetry(ctx, c.logger, "FetchMessages", func() ([]platform.ChannelMessage, error) {
			return c.gateway.FetchMessages(ctx, threadID, after, fetchPageSize)
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < fetchPageSize {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}
