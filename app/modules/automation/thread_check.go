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
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/observability"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ThreadCheck creates the current week's thread inside the
// thread-creation window. The week row is written first and the thread
// ID recorded after the platform call succeeds, so a failed call leaves
// a threadless week row the next tick retries.
type ThreadCheck struct {
	repo    challengedb.Repository
	gateway platform.Gateway
	window  Window
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewThreadCheck creates the check.
func NewThreadCheck(
	repo challengedb.Repository,
	gateway platform.Gateway,
	window Window,
	obs *observability.Observability,
) *ThreadCheck {
	return &ThreadCheck{
		repo:    repo,
		gateway: gateway,
		window:  window,
		logger:  obs.Logger,
		metrics: obs.Metrics,
	}
}

// Run executes the check for one guild. now is the guild's local time.
func (c *ThreadCheck) Run(ctx context.Context, guild *guilddomain.Guild, now time.Time) error {
	if !c.window.Contains(now) {
		return nil
	}

	challenge, err := c.repo.GetCurrentChallenge(ctx, guild.GuildID)
	if errors.Is(err, challengedb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("thread check: %w", err)
	}
	today := civilDate(now)
	if !challenge.Active || !challenge.CoversDate(today) {
		return nil
	}

	expected := challenge.ExpectedWeekNumber(today)
	if expected < 1 || expected > challenge.WeekCount {
		return nil
	}
	if guild.CategoryID == "" {
		c.logger.WarnContext(ctx, "Guild has no category channel, cannot create week thread",
			slog.String("guild_id", string(guild.GuildID)),
		)
		return nil
	}

	// The goal thread belongs to the start of the challenge; catch it up
	// during week 1 in case the bot was down when the challenge began.
	if expected == 1 {
		if err := c.ensureThread(ctx, guild, challenge, challengedomain.GoalWeekNumber); err != nil {
			return err
		}
	}
	return c.ensureThread(ctx, guild, challenge, expected)
}

func (c *ThreadCheck) ensureThread(
	ctx context.Context,
	guild *guilddomain.Guild,
	challenge *challengedomain.Challenge,
	weekNumber int,
) error {
	week, err := c.repo.EnsureWeek(ctx, challenge.ID, weekNumber)
	if err != nil {
		return fmt.Errorf("thread check week %d: %w", weekNumber, err)
	}
	if week.HasThread() {
		return nil
	}

	name := challengedomain.ThreadName(challenge.Semester, weekNumber)
	if weekNumber == challengedomain.GoalWeekNumber {
		name = challengedomain.GoalThreadName(challenge.Semester)
	}

	threadID, err := platform.WithRetry(ctx, c.logger, "CreateThread", func() (sharedtypes.ThreadID, error) {
		return c.gateway.CreateThread(ctx, guild.CategoryID, name)
	})
	if err != nil {
		return fmt.Errorf("thread check create %q: %w", name, err)
	}
	if err := c.repo.SetWeekThread(ctx, week.ID, threadID); err != nil {
		return fmt.Errorf("thread check record %q: %w", name, err)
	}
	c.metrics.ThreadsCreated.Inc()
	c.logger.InfoContext(ctx, "Week thread created",
		slog.String("guild_id", string(guild.GuildID)),
		slog.String("thread", name),
		slog.Int("week", weekNumber),
	)

	// Kickoff message is best effort; the thread is already recorded.
	kickoff := fmt.Sprintf("Week %d of Q%d has started, post your sessions here!", weekNumber, challenge.Semester)
	if weekNumber == challengedomain.GoalWeekNumber {
		kickoff = fmt.Sprintf("Q%d goal collection is open, post your goals here!", challenge.Semester)
	}
	if guild.PingRoleID != "" {
		kickoff = fmt.Sprintf("<@&%s> %s", guild.PingRoleID, kickoff)
	}
	if err := platform.RetryVoid(ctx, c.logger, "SendMessage", func() error {
		return c.gateway.SendMessage(ctx, sharedtypes.ChannelID(threadID), kickoff)
	}); err != nil {
		c.logger.WarnContext(ctx, "Kickoff message failed",
			slog.String("thread", name),
			slog.Any("error", err),
		)
	}
	return nil
}
