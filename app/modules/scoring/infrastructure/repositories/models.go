package scoringdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Emoji is the bun model for the emojis table. The active-uniqueness rule
// (one active emoji per guild/scope/code) lives in a partial unique
// index created by the migration; soft-deleted rows stay for history.
type Emoji struct {
	bun.BaseModel `bun:"table:emojis,alias:e"`

	ID          int64               `bun:"id,pk,autoincrement"`
	GuildID     sharedtypes.GuildID `bun:"guild_id,notnull,type:varchar(20)"`
	ChallengeID *int64              `bun:"challenge_id,nullzero"`
	Code        string              `bun:"code,notnull,type:varchar(128)"`
	Points      int                 `bun:"points,notnull"`
	Category    string              `bun:"category,notnull,type:varchar(16)"`
	Active      bool                `bun:"active,notnull,default:true"`
	CreatedAt   time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// MessageLog is the bun model for the message_logs table. The message ID
// is the primary key; that uniqueness is what makes concurrent processing
// of the same message collapse into a no-op.
type MessageLog struct {
	bun.BaseModel `bun:"table:message_logs,alias:ml"`

	MessageID      sharedtypes.MessageID `bun:"message_id,pk,type:varchar(20)"`
	UserID         sharedtypes.UserID    `bun:"user_id,notnull,type:varchar(20)"`
	WeekID         int64                 `bun:"week_id,notnull"`
	PomodoroPoints int                   `bun:"pomodoro_points,notnull,default:0"`
	BonusPoints    int                   `bun:"bonus_points,notnull,default:0"`
	GoalPoints     int                   `bun:"goal_points,notnull,default:0"`
	CreatedAt      time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// weekJoinedLog scans the message_logs ⋈ weeks projection.
type weekJoinedLog struct {
	MessageLog
	WeekNumber int `bun:"week_number"`
}
