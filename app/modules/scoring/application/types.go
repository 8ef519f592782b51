package scoringservice

import (
	"context"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ResolvedWeek is the week/challenge context a message lands in.
type ResolvedWeek struct {
	WeekID          int64
	WeekNumber      int
	ChallengeID     int64
	GuildID         sharedtypes.GuildID
	Semester        int
	ChallengeActive bool
}

// WeekResolver resolves platform channels and week IDs into challenge
// context. Implemented by the challenge-module adapter.
type WeekResolver interface {
	// ResolveThread returns nil (no error) when no week owns the thread.
	ResolveThread(ctx context.Context, threadID sharedtypes.ThreadID) (*ResolvedWeek, error)
	// ResolveWeekID returns nil (no error) when the week does not exist.
	ResolveWeekID(ctx context.Context, weekID int64) (*ResolvedWeek, error)
}

// SkipReason says why a message was not applied. Skips are business
// results, never errors.
type SkipReason string

const (
	ReasonNoActiveWeek      SkipReason = "no active week"
	ReasonChallengeInactive SkipReason = "challenge inactive"
	ReasonAlreadyProcessed  SkipReason = "already processed"
	ReasonNoEmojiDetected   SkipReason = "no emoji detected"
	ReasonNotLogged         SkipReason = "message not logged"
)

// ProcessInput is one message to run through the ledger. ChannelID is
// the channel the platform reported; for thread messages that is the
// thread itself, which is what the week lookup keys on.
type ProcessInput struct {
	ChannelID sharedtypes.ChannelID
	MessageID sharedtypes.MessageID
	UserID    sharedtypes.UserID
	Content   string
	Force     bool
	// AllowInactive lets the historical importer log messages for a
	// challenge that is not (yet) active. Live events never set it.
	AllowInactive bool
}

// MessageProcessedPayload reports an applied ledger write.
type MessageProcessedPayload struct {
	MessageID  sharedtypes.MessageID
	WeekID     int64
	WeekNumber int
	Totals     scoringdomain.PointTotals
	Updated    bool // existing row overwritten
	Removed    bool // row deleted because the new total is zero
}

// MessageSkippedPayload reports an idempotency no-op.
type MessageSkippedPayload struct {
	MessageID sharedtypes.MessageID
	Reason    SkipReason
}

// MessageDeletedPayload reports a (possibly no-op) deletion.
type MessageDeletedPayload struct {
	MessageID sharedtypes.MessageID
	Deleted   bool
}

// ReconcileReport counts what a week reconciliation changed.
type ReconcileReport struct {
	WeekID      int64
	Deleted     int64
	Reprocessed int
	Skipped     int
	Warnings    []string
}
