package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	guilddb "github.com/focus-guild/pomo-bot/app/modules/guild/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

// CreateGuildsTable creates the guilds table from the bun model.
func CreateGuildsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*guilddb.Guild)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create guilds table: %w", err)
	}
	return nil
}

// DropGuildsTable drops the guilds table.
func DropGuildsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*guilddb.Guild)(nil)).IfExists().Cascade().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop guilds table: %w", err)
	}
	return nil
}

func init() {
	Migrations.MustRegister(CreateGuildsTable, DropGuildsTable)
}
