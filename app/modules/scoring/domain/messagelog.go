package scoringdomain

import "github.com/focus-guild/pomo-bot/internal/sharedtypes"

// MessageLog is the ledger's unit: one processed message and its point
// breakdown. A log never moves between weeks.
type MessageLog struct {
	MessageID sharedtypes.MessageID
	UserID    sharedtypes.UserID
	WeekID    int64
	Totals    PointTotals
}

// WeekMessageLog is a log joined with its week number, for cumulative
// aggregation.
type WeekMessageLog struct {
	MessageLog
	WeekNumber int
}
