package guilddb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Guild is the bun model for the guilds table.
type Guild struct {
	bun.BaseModel `bun:"table:guilds,alias:g"`

	GuildID      sharedtypes.GuildID   `bun:"guild_id,pk,notnull,type:varchar(20)"`
	Language     string                `bun:"language,notnull,default:'en',type:varchar(8)"`
	Timezone     string                `bun:"timezone,notnull,default:'Europe/Berlin',type:varchar(64)"`
	CategoryID   sharedtypes.ChannelID `bun:"category_id,nullzero,type:varchar(20)"`
	ConfigRoleID sharedtypes.RoleID    `bun:"config_role_id,nullzero,type:varchar(20)"`
	PingRoleID   sharedtypes.RoleID    `bun:"ping_role_id,nullzero,type:varchar(20)"`
	// Nullable reference owning the at-most-one-current-challenge invariant.
	CurrentChallengeID *int64    `bun:"current_challenge_id,nullzero"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
