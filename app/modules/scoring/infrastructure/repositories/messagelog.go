package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// MessageLogDBImpl is the bun-backed ledger repository. DB is an IDB
// so the same implementation serves both the root handle and a
// transaction scope handed out by RunInTx.
type MessageLogDBImpl struct {
	DB bun.IDB
}

// NewMessageLogRepository constructs the ledger repository.
func NewMessageLogRepository(db *bun.DB) *MessageLogDBImpl {
	return &MessageLogDBImpl{DB: db}
}

func (db *MessageLogDBImpl) RunInTx(ctx context.Context, fn func(ctx context.Context, logs MessageLogRepository) error) error {
	root, ok := db.DB.(*bun.DB)
	if !ok {
		// Already transaction-scoped; reuse the scope.
		return fn(ctx, db)
	}
	return root.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &MessageLogDBImpl{DB: tx})
	})
}

func (db *MessageLogDBImpl) GetLog(ctx context.Context, messageID sharedtypes.MessageID) (*scoringdomain.MessageLog, error) {
	var model MessageLog
	err := db.DB.NewSelect().Model(&model).Where("message_id = ?", messageID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch message log: %w", err)
	}
	return logToDomain(&model), nil
}

func (db *MessageLogDBImpl) InsertLog(ctx context.Context, log *scoringdomain.MessageLog) (bool, error) {
	model := logToModel(log)
	res, err := db.DB.NewInsert().Model(model).
		On("CONFLICT (message_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert message log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *MessageLogDBImpl) UpdateLogPoints(ctx context.Context, messageID sharedtypes.MessageID, totals scoringdomain.PointTotals) (bool, error) {
	res, err := db.DB.NewUpdate().Model((*MessageLog)(nil)).
		Where("message_id = ?", messageID).
		Set("pomodoro_points = ?", totals.Pomodoro).
		Set("bonus_points = ?", totals.Bonus).
		Set("goal_points = ?", totals.Goal).
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update message log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *MessageLogDBImpl) DeleteLog(ctx context.Context, messageID sharedtypes.MessageID) (bool, error) {
	res, err := db.DB.NewDelete().Model((*MessageLog)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete message log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *MessageLogDBImpl) ListWeekLogs(ctx context.Context, weekID int64) ([]*scoringdomain.MessageLog, error) {
	var models []MessageLog
	err := db.DB.NewSelect().Model(&models).
		Where("week_id = ?", weekID).
		Order("message_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list week logs: %w", err)
	}
	out := make([]*scoringdomain.MessageLog, len(models))
	for i := range models {
		out[i] = logToDomain(&models[i])
	}
	return out, nil
}

func (db *MessageLogDBImpl) ListChallengeLogs(ctx context.Context, challengeID int64, uptoWeek int) ([]*scoringdomain.WeekMessageLog, error) {
	var rows []weekJoinedLog
	err := db.DB.NewSelect().Model(&rows).
		ColumnExpr("ml.*").
		ColumnExpr("w.week_number AS week_number").
		Join("JOIN weeks AS w ON w.id = ml.week_id").
		Where("w.challenge_id = ?", challengeID).
		Where("w.week_number >= 1").
		Where("w.week_number <= ?", uptoWeek).
		Order("w.week_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge logs: %w", err)
	}
	out := make([]*scoringdomain.WeekMessageLog, len(rows))
	for i := range rows {
		out[i] = &scoringdomain.WeekMessageLog{
			MessageLog: *logToDomain(&rows[i].MessageLog),
			WeekNumber: rows[i].WeekNumber,
		}
	}
	return out, nil
}

func (db *MessageLogDBImpl) ListGoalLogs(ctx context.Context, challengeID int64) ([]*scoringdomain.MessageLog, error) {
	var models []MessageLog
	err := db.DB.NewSelect().Model(&models).
		Join("JOIN weeks AS w ON w.id = ml.week_id").
		Where("w.challenge_id = ?", challengeID).
		Where("w.week_number = 0").
		Order("ml.message_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal logs: %w", err)
	}
	out := make([]*scoringdomain.MessageLog, len(models))
	for i := range models {
		out[i] = logToDomain(&models[i])
	}
	return out, nil
}

func (db *MessageLogDBImpl) DeleteStale(ctx context.Context, weekID int64, keep []sharedtypes.MessageID) (int64, error) {
	q := db.DB.NewDelete().Model((*MessageLog)(nil)).Where("week_id = ?", weekID)
	if len(keep) > 0 {
		q = q.Where("message_id NOT IN (?)", bun.In(keep))
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale logs: %w", err)
	}
	return res.RowsAffected()
}

func logToDomain(m *MessageLog) *scoringdomain.MessageLog {
	return &scoringdomain.MessageLog{
		MessageID: m.MessageID,
		UserID:    m.UserID,
		WeekID:    m.WeekID,
		Totals: scoringdomain.PointTotals{
			Pomodoro: m.PomodoroPoints,
			Bonus:    m.BonusPoints,
			Goal:     m.GoalPoints,
		},
	}
}

func logToModel(l *scoringdomain.MessageLog) *MessageLog {
	return &MessageLog{
		MessageID:      l.MessageID,
		UserID:         l.UserID,
		WeekID:         l.WeekID,
		PomodoroPoints: l.Totals.Pomodoro,
		BonusPoints:    l.Totals.Bonus,
		GoalPoints:     l.Totals.Goal,
	}
}
