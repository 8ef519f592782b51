package scoringdb

import (
	"context"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// EmojiRepository is the emoji configuration port.
type EmojiRepository interface {
	AddEmoji(ctx context.Context, emoji *scoringdomain.Emoji) (*scoringdomain.Emoji, error)
	// DeactivateEmoji soft-deletes; returns false when no active row
	// matched.
	DeactivateEmoji(ctx context.Context, guildID sharedtypes.GuildID, emojiID int64) (bool, error)
	// ListActive returns the active configuration applying to a
	// challenge: global rows plus rows scoped to that challenge.
	ListActive(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) ([]scoringdomain.Emoji, error)
	ListAll(ctx context.Context, guildID sharedtypes.GuildID) ([]scoringdomain.Emoji, error)
}

// MessageLogRepository is the ledger persistence port.
type MessageLogRepository interface {
	GetLog(ctx context.Context, messageID sharedtypes.MessageID) (*scoringdomain.MessageLog, error)
	// InsertLog inserts unless the message is already logged; returns
	// false (no error) when it was. This is the race resolution for
	// concurrent creates of the same message.
	InsertLog(ctx context.Context, log *scoringdomain.MessageLog) (bool, error)
	// UpdateLogPoints overwrites the three totals in place.
	UpdateLogPoints(ctx context.Context, messageID sharedtypes.MessageID, totals scoringdomain.PointTotals) (bool, error)
	// DeleteLog removes the log; idempotent, returns whether a row went.
	DeleteLog(ctx context.Context, messageID sharedtypes.MessageID) (bool, error)

	ListWeekLogs(ctx context.Context, weekID int64) ([]*scoringdomain.MessageLog, error)
	// ListChallengeLogs returns logs of scored weeks 1..uptoWeek joined
	// with their week numbers.
	ListChallengeLogs(ctx context.Context, challengeID int64, uptoWeek int) ([]*scoringdomain.WeekMessageLog, error)
	// ListGoalLogs returns the goal-collection week's logs, where users
	// declared their targets in goal points.
	ListGoalLogs(ctx context.Context, challengeID int64) ([]*scoringdomain.MessageLog, error)
	// DeleteStale removes every log of the week whose message ID is not
	// in keep. Runs as one statement so reconciliation cannot be observed
	// half-applied.
	DeleteStale(ctx context.Context, weekID int64, keep []sharedtypes.MessageID) (int64, error)

	// RunInTx runs fn against a repository bound to a single
	// transaction. The reconciler uses it so a week's delete-and-rewrite
	// commits atomically.
	RunInTx(ctx context.Context, fn func(ctx context.Context, logs MessageLogRepository) error) error
}
