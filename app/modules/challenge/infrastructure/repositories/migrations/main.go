package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

// CreateChallengeTables creates the challenges and weeks tables with
// their uniqueness constraints.
func CreateChallengeTables(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().Model((*challengedb.Challenge)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create challenges table: %w", err)
		}
		if _, err := tx.NewCreateTable().Model((*challengedb.Week)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create weeks table: %w", err)
		}
		// Thread lookup is on the live message path.
		if _, err := tx.NewCreateIndex().Model((*challengedb.Week)(nil)).
			Index("weeks_thread_id_idx").
			Column("thread_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create weeks thread index: %w", err)
		}
		return nil
	})
}

// DropChallengeTables drops the challenge tables.
func DropChallengeTables(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDropTable().Model((*challengedb.Week)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop weeks table: %w", err)
		}
		if _, err := tx.NewDropTable().Model((*challengedb.Challenge)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop challenges table: %w", err)
		}
		return nil
	})
}

func init() {
	Migrations.MustRegister(CreateChallengeTables, DropChallengeTables)
}
