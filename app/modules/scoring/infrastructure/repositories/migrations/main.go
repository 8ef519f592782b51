package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

// CreateScoringTables creates the emojis and message_logs tables. The
// emoji active-uniqueness rule needs a partial unique index, which bun
// model tags cannot express, hence the raw statement.
func CreateScoringTables(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().Model((*scoringdb.Emoji)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create emojis table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS emojis_active_code_uq
			ON emojis (guild_id, COALESCE(challenge_id, 0), code)
			WHERE active`); err != nil {
			return fmt.Errorf("failed to create emoji uniqueness index: %w", err)
		}
		if _, err := tx.NewCreateTable().Model((*scoringdb.MessageLog)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create message_logs table: %w", err)
		}
		if _, err := tx.NewCreateIndex().Model((*scoringdb.MessageLog)(nil)).
			Index("message_logs_week_id_idx").
			Column("week_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create message_logs week index: %w", err)
		}
		return nil
	})
}

// DropScoringTables drops the scoring tables.
func DropScoringTables(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDropTable().Model((*scoringdb.MessageLog)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop message_logs table: %w", err)
		}
		if _, err := tx.NewDropTable().Model((*scoringdb.Emoji)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop emojis table: %w", err)
		}
		return nil
	})
}

func init() {
	Migrations.MustRegister(CreateScoringTables, DropScoringTables)
}
