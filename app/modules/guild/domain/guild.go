// Package guilddomain holds the guild (server) aggregate.
package guilddomain

import (
	"time"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Guild is one community the bot runs challenges for. Created on first
// setup, mutated by config commands, never deleted in normal operation.
//
// CurrentChallengeID is the single owner of the "current challenge"
// invariant: at most one challenge per guild is current, and this
// reference is what says which one. The booleans on challenge rows are a
// projection kept in sync transactionally by the challenge lifecycle.
type Guild struct {
	GuildID            sharedtypes.GuildID
	Language           string
	Timezone           string
	CategoryID         sharedtypes.ChannelID
	ConfigRoleID       sharedtypes.RoleID
	PingRoleID         sharedtypes.RoleID
	CurrentChallengeID *int64
}

// Location resolves the guild's IANA timezone, falling back to the given
// default and finally UTC. All scheduling windows evaluate in this
// location; storage stays UTC.
func (g *Guild) Location(fallback string) *time.Location {
	for _, name := range []string{g.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}
