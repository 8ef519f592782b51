package guilddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// GuildDBImpl is the bun-backed guild repository.
type GuildDBImpl struct {
	DB *bun.DB
}

// NewRepository constructs the guild repository.
func NewRepository(db *bun.DB) *GuildDBImpl {
	return &GuildDBImpl{DB: db}
}

func (db *GuildDBImpl) GetGuild(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.Guild, error) {
	var model Guild
	err := db.DB.NewSelect().Model(&model).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch guild: %w", err)
	}
	return toDomain(&model), nil
}

func (db *GuildDBImpl) SaveGuild(ctx context.Context, guild *guilddomain.Guild) error {
	model := toModel(guild)
	_, err := db.DB.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert guild: %w", err)
	}
	return nil
}

func (db *GuildDBImpl) UpdateGuild(ctx context.Context, guildID sharedtypes.GuildID, updates *UpdateFields) error {
	q := db.DB.NewUpdate().Model((*Guild)(nil)).Where("guild_id = ?", guildID)
	if updates.Language != nil {
		q = q.Set("language = ?", *updates.Language)
	}
	if updates.Timezone != nil {
		q = q.Set("timezone = ?", *updates.Timezone)
	}
	if updates.CategoryID != nil {
		q = q.Set("category_id = ?", *updates.CategoryID)
	}
	if updates.ConfigRoleID != nil {
		q = q.Set("config_role_id = ?", *updates.ConfigRoleID)
	}
	if updates.PingRoleID != nil {
		q = q.Set("ping_role_id = ?", *updates.PingRoleID)
	}
	q = q.Set("updated_at = ?", time.Now().UTC())

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *GuildDBImpl) ListGuilds(ctx context.Context) ([]*guilddomain.Guild, error) {
	var models []Guild
	if err := db.DB.NewSelect().Model(&models).Order("guild_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	guilds := make([]*guilddomain.Guild, len(models))
	for i := range models {
		guilds[i] = toDomain(&models[i])
	}
	return guilds, nil
}

func toDomain(m *Guild) *guilddomain.Guild {
	return &guilddomain.Guild{
		GuildID:            m.GuildID,
		Language:           m.Language,
		Timezone:           m.Timezone,
		CategoryID:         m.CategoryID,
		ConfigRoleID:       m.ConfigRoleID,
		PingRoleID:         m.PingRoleID,
		CurrentChallengeID: m.CurrentChallengeID,
	}
}

func toModel(g *guilddomain.Guild) *Guild {
	return &Guild{
		GuildID:            g.GuildID,
		Language:           g.Language,
		Timezone:           g.Timezone,
		CategoryID:         g.CategoryID,
		ConfigRoleID:       g.ConfigRoleID,
		PingRoleID:         g.PingRoleID,
		CurrentChallengeID: g.CurrentChallengeID,
	}
}

// isUniqueViolation reports whether err is a Postgres 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
