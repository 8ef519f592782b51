package challengedb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Challenge is the bun model for the challenges table. The (guild_id,
// semester) pair is unique: history is retained, one row per semester.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID        int64               `bun:"id,pk,autoincrement"`
	GuildID   sharedtypes.GuildID `bun:"guild_id,notnull,type:varchar(20),unique:challenges_guild_semester"`
	Semester  int                 `bun:"semester,notnull,unique:challenges_guild_semester"`
	Theme     string              `bun:"theme,notnull,type:varchar(255)"`
	StartDate time.Time           `bun:"start_date,notnull,type:date"`
	EndDate   time.Time           `bun:"end_date,notnull,type:date"`
	WeekCount int                 `bun:"week_count,notnull"`
	Started   bool                `bun:"started,notnull,default:false"`
	Active    bool                `bun:"active,notnull,default:false"`
	Current   bool                `bun:"current,notnull,default:false"`
	CreatedAt time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Week is the bun model for the weeks table. (challenge_id, week_number)
// is unique so concurrent scheduler ticks cannot create duplicates.
type Week struct {
	bun.BaseModel `bun:"table:weeks,alias:w"`

	ID               int64                `bun:"id,pk,autoincrement"`
	ChallengeID      int64                `bun:"challenge_id,notnull,unique:weeks_challenge_number"`
	WeekNumber       int                  `bun:"week_number,notnull,unique:weeks_challenge_number"`
	ThreadID         sharedtypes.ThreadID `bun:"thread_id,nullzero,type:varchar(20)"`
	RankingPublished bool                 `bun:"ranking_published,notnull,default:false"`
	CreatedAt        time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
