package scoringdomain

import (
	"errors"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Emoji validation errors.
var (
	ErrEmptyCode  = errors.New("emoji code must not be empty")
	ErrPointRange = errors.New("emoji points must be between 1 and 999")
)

// Emoji is one configured scoring emoji on a guild. ChallengeID nil means
// global: the emoji applies to every challenge on the guild. At most one
// active emoji exists per (guild, challenge scope, code).
//
// Code is the literal token as the matcher produces it: a native
// pictograph, a ":name:" shortcode, or a "<:name:id>" custom token. No
// cross-format equivalence is inferred; configuring both forms is how an
// equivalence is expressed.
type Emoji struct {
	ID          int64
	GuildID     sharedtypes.GuildID
	ChallengeID *int64
	Code        string
	Points      int
	Category    Category
	Active      bool
}

// Validate applies the configuration rules.
func (e *Emoji) Validate() error {
	if e.Code == "" {
		return ErrEmptyCode
	}
	if e.Points < 1 || e.Points > 999 {
		return ErrPointRange
	}
	if !e.Category.Valid() {
		return errors.New("invalid emoji category")
	}
	return nil
}
