package challengedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ChallengeDBImpl is the bun-backed challenge/week repository.
type ChallengeDBImpl struct {
	DB *bun.DB
}

// NewRepository constructs the challenge repository.
func NewRepository(db *bun.DB) *ChallengeDBImpl {
	return &ChallengeDBImpl{DB: db}
}

func (db *ChallengeDBImpl) CreateChallenge(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	model := challengeToModel(challenge)
	_, err := db.DB.NewInsert().Model(model).Returning("id").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSemester
		}
		return nil, fmt.Errorf("failed to insert challenge: %w", err)
	}
	return challengeToDomain(model), nil
}

func (db *ChallengeDBImpl) GetChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error) {
	var model Challenge
	err := db.DB.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}
	return challengeToDomain(&model), nil
}

func (db *ChallengeDBImpl) GetCurrentChallenge(ctx context.Context, guildID sharedtypes.GuildID) (*challengedomain.Challenge, error) {
	var model Challenge
	err := db.DB.NewSelect().Model(&model).
		Where("guild_id = ?", guildID).
		Where("current = TRUE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch current challenge: %w", err)
	}
	return challengeToDomain(&model), nil
}

func (db *ChallengeDBImpl) ListChallenges(ctx context.Context, guildID sharedtypes.GuildID) ([]*challengedomain.Challenge, error) {
	var models []Challenge
	err := db.DB.NewSelect().Model(&models).
		Where("guild_id = ?", guildID).
		Order("semester ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	out := make([]*challengedomain.Challenge, len(models))
	for i := range models {
		out[i] = challengeToDomain(&models[i])
	}
	return out, nil
}

// StartChallenge performs the start transition in one transaction:
// demote any current sibling, flip the flags, point the guild row at the
// new challenge, and create weeks 0 and 1.
func (db *ChallengeDBImpl) StartChallenge(ctx context.Context, id int64) (*StartOutcome, error) {
	outcome := &StartOutcome{}

	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var model Challenge
		err := tx.NewSelect().Model(&model).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if model.Started {
			return challengedomain.ErrAlreadyStarted
		}

		// Demote every other current challenge on the guild.
		var demoted []Challenge
		err = tx.NewUpdate().Model(&demoted).
			Where("guild_id = ?", model.GuildID).
			Where("current = TRUE").
			Where("id != ?", id).
			Set("current = FALSE").
			Set("active = FALSE").
			Set("updated_at = ?", time.Now().UTC()).
			Returning("id").
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		for i := range demoted {
			outcome.DemotedIDs = append(outcome.DemotedIDs, demoted[i].ID)
		}

		model.Started = true
		model.Active = true
		model.Current = true
		model.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(&model).WherePK().Exec(ctx); err != nil {
			return err
		}

		// The guild reference is the structural owner of "current".
		if _, err := tx.NewUpdate().Table("guilds").
			Where("guild_id = ?", model.GuildID).
			Set("current_challenge_id = ?", model.ID).
			Set("updated_at = ?", time.Now().UTC()).
			Exec(ctx); err != nil {
			return err
		}
		outcome.GuildUpdate = true

		goalWeek, err := ensureWeekTx(ctx, tx, model.ID, challengedomain.GoalWeekNumber)
		if err != nil {
			return err
		}
		firstWeek, err := ensureWeekTx(ctx, tx, model.ID, 1)
		if err != nil {
			return err
		}

		outcome.Challenge = challengeToDomain(&model)
		outcome.GoalWeek = goalWeek
		outcome.FirstWeek = firstWeek
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (db *ChallengeDBImpl) StopChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error) {
	var result *challengedomain.Challenge

	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var model Challenge
		err := tx.NewSelect().Model(&model).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if !model.Started {
			return challengedomain.ErrNotStarted
		}

		model.Active = false
		model.Current = false
		model.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(&model).WherePK().Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().Table("guilds").
			Where("guild_id = ?", model.GuildID).
			Where("current_challenge_id = ?", model.ID).
			Set("current_challenge_id = NULL").
			Set("updated_at = ?", time.Now().UTC()).
			Exec(ctx); err != nil {
			return err
		}

		result = challengeToDomain(&model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *ChallengeDBImpl) DeactivateChallenge(ctx context.Context, id int64) (*challengedomain.Challenge, error) {
	var model Challenge
	err := db.DB.NewUpdate().Model(&model).
		Where("id = ?", id).
		Set("active = FALSE").
		Set("updated_at = ?", time.Now().UTC()).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to deactivate challenge: %w", err)
	}
	return challengeToDomain(&model), nil
}

func (db *ChallengeDBImpl) CreateImported(ctx context.Context, challenge *challengedomain.Challenge, weeks []ImportedWeek) (*challengedomain.Challenge, error) {
	var result *challengedomain.Challenge

	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := challengeToModel(challenge)
		model.Started = false
		model.Active = false
		model.Current = false
		if _, err := tx.NewInsert().Model(model).Returning("id").Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSemester
			}
			return err
		}
		for _, iw := range weeks {
			week := &Week{
				ChallengeID: model.ID,
				WeekNumber:  iw.WeekNumber,
				ThreadID:    iw.ThreadID,
			}
			if _, err := tx.NewInsert().Model(week).Exec(ctx); err != nil {
				return err
			}
		}
		result = challengeToDomain(model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *ChallengeDBImpl) GetWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	var model Week
	err := db.DB.NewSelect().Model(&model).
		Where("challenge_id = ?", challengeID).
		Where("week_number = ?", weekNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch week: %w", err)
	}
	return weekToDomain(&model), nil
}

func (db *ChallengeDBImpl) GetWeekByID(ctx context.Context, id int64) (*challengedomain.Week, error) {
	var model Week
	err := db.DB.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch week: %w", err)
	}
	return weekToDomain(&model), nil
}

func (db *ChallengeDBImpl) GetWeekByThread(ctx context.Context, threadID sharedtypes.ThreadID) (*challengedomain.Week, error) {
	var model Week
	err := db.DB.NewSelect().Model(&model).Where("thread_id = ?", threadID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch week by thread: %w", err)
	}
	return weekToDomain(&model), nil
}

func (db *ChallengeDBImpl) EnsureWeek(ctx context.Context, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	var result *challengedomain.Week
	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		week, err := ensureWeekTx(ctx, tx, challengeID, weekNumber)
		if err != nil {
			return err
		}
		result = week
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureWeekTx(ctx context.Context, tx bun.Tx, challengeID int64, weekNumber int) (*challengedomain.Week, error) {
	model := &Week{
		ChallengeID: challengeID,
		WeekNumber:  weekNumber,
	}
	_, err := tx.NewInsert().Model(model).
		On("CONFLICT (challenge_id, week_number) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure week: %w", err)
	}

	// Re-read: either our insert or the row a concurrent caller won with.
	var existing Week
	err = tx.NewSelect().Model(&existing).
		Where("challenge_id = ?", challengeID).
		Where("week_number = ?", weekNumber).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ensured week: %w", err)
	}
	return weekToDomain(&existing), nil
}

func (db *ChallengeDBImpl) SetWeekThread(ctx context.Context, weekID int64, threadID sharedtypes.ThreadID) error {
	res, err := db.DB.NewUpdate().Model((*Week)(nil)).
		Where("id = ?", weekID).
		Set("thread_id = ?", threadID).
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set week thread: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (db *ChallengeDBImpl) MarkRankingPublished(ctx context.Context, weekID int64) error {
	res, err := db.DB.NewUpdate().Model((*Week)(nil)).
		Where("id = ?", weekID).
		Set("ranking_published = TRUE").
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark ranking published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (db *ChallengeDBImpl) ListWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	var models []Week
	err := db.DB.NewSelect().Model(&models).
		Where("challenge_id = ?", challengeID).
		Order("week_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	out := make([]*challengedomain.Week, len(models))
	for i := range models {
		out[i] = weekToDomain(&models[i])
	}
	return out, nil
}

func (db *ChallengeDBImpl) ListUnpublishedWeeks(ctx context.Context, challengeID int64) ([]*challengedomain.Week, error) {
	var models []Week
	err := db.DB.NewSelect().Model(&models).
		Where("challenge_id = ?", challengeID).
		Where("week_number >= 1").
		Where("thread_id IS NOT NULL").
		Where("ranking_published = FALSE").
		Order("week_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpublished weeks: %w", err)
	}
	out := make([]*challengedomain.Week, len(models))
	for i := range models {
		out[i] = weekToDomain(&models[i])
	}
	return out, nil
}

func challengeToDomain(m *Challenge) *challengedomain.Challenge {
	return &challengedomain.Challenge{
		ID:        m.ID,
		GuildID:   m.GuildID,
		Semester:  m.Semester,
		Theme:     m.Theme,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		WeekCount: m.WeekCount,
		Started:   m.Started,
		Active:    m.Active,
		Current:   m.Current,
	}
}

func challengeToModel(c *challengedomain.Challenge) *Challenge {
	return &Challenge{
		ID:        c.ID,
		GuildID:   c.GuildID,
		Semester:  c.Semester,
		Theme:     c.Theme,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		WeekCount: c.WeekCount,
		Started:   c.Started,
		Active:    c.Active,
		Current:   c.Current,
	}
}

func weekToDomain(m *Week) *challengedomain.Week {
	return &challengedomain.Week{
		ID:               m.ID,
		ChallengeID:      m.ChallengeID,
		WeekNumber:       m.WeekNumber,
		ThreadID:         m.ThreadID,
		RankingPublished: m.RankingPublished,
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
