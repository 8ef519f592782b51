package guilddb

import (
	"context"

	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// UpdateFields carries the mutable configuration of a guild. Nil pointers
// leave the column untouched.
type UpdateFields struct {
	Language     *string
	Timezone     *string
	CategoryID   *sharedtypes.ChannelID
	ConfigRoleID *sharedtypes.RoleID
	PingRoleID   *sharedtypes.RoleID
}

// Repository is the guild persistence port.
type Repository interface {
	GetGuild(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.Guild, error)
	SaveGuild(ctx context.Context, guild *guilddomain.Guild) error
	UpdateGuild(ctx context.Context, guildID sharedtypes.GuildID, updates *UpdateFields) error
	ListGuilds(ctx context.Context) ([]*guilddomain.Guild, error)
}
