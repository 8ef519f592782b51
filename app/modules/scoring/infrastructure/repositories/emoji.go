package scoringdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// EmojiDBImpl is the bun-backed emoji configuration repository.
type EmojiDBImpl struct {
	DB *bun.DB
}

// NewEmojiRepository constructs the emoji repository.
func NewEmojiRepository(db *bun.DB) *EmojiDBImpl {
	return &EmojiDBImpl{DB: db}
}

func (db *EmojiDBImpl) AddEmoji(ctx context.Context, emoji *scoringdomain.Emoji) (*scoringdomain.Emoji, error) {
	model := &Emoji{
		GuildID:     emoji.GuildID,
		ChallengeID: emoji.ChallengeID,
		Code:        emoji.Code,
		Points:      emoji.Points,
		Category:    emoji.Category.String(),
		Active:      true,
	}
	_, err := db.DB.NewInsert().Model(model).Returning("id").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmoji
		}
		return nil, fmt.Errorf("failed to insert emoji: %w", err)
	}
	return emojiToDomain(model)
}

func (db *EmojiDBImpl) DeactivateEmoji(ctx context.Context, guildID sharedtypes.GuildID, emojiID int64) (bool, error) {
	res, err := db.DB.NewUpdate().Model((*Emoji)(nil)).
		Where("id = ?", emojiID).
		Where("guild_id = ?", guildID).
		Where("active = TRUE").
		Set("active = FALSE").
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate emoji: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *EmojiDBImpl) ListActive(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) ([]scoringdomain.Emoji, error) {
	var models []Emoji
	err := db.DB.NewSelect().Model(&models).
		Where("guild_id = ?", guildID).
		Where("active = TRUE").
		Where("challenge_id IS NULL OR challenge_id = ?", challengeID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active emojis: %w", err)
	}
	return emojisToDomain(models)
}

func (db *EmojiDBImpl) ListAll(ctx context.Context, guildID sharedtypes.GuildID) ([]scoringdomain.Emoji, error) {
	var models []Emoji
	err := db.DB.NewSelect().Model(&models).
		Where("guild_id = ?", guildID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emojis: %w", err)
	}
	return emojisToDomain(models)
}

func emojiToDomain(m *Emoji) (*scoringdomain.Emoji, error) {
	category, err := scoringdomain.ParseCategory(m.Category)
	if err != nil {
		return nil, fmt.Errorf("emoji %d: %w", m.ID, err)
	}
	return &scoringdomain.Emoji{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChallengeID: m.ChallengeID,
		Code:        m.Code,
		Points:      m.Points,
		Category:    category,
		Active:      m.Active,
	}, nil
}

func emojisToDomain(models []Emoji) ([]scoringdomain.Emoji, error) {
	out := make([]scoringdomain.Emoji, 0, len(models))
	for i := range models {
		e, err := emojiToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// isUniqueViolation reports whether err is a Postgres 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
