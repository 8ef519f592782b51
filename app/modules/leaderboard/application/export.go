package leaderboardservice

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	leaderboarddomain "github.com/focus-guild/pomo-bot/app/modules/leaderboard/domain"
	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
)

// ExportChallengeWorkbook builds an XLSX workbook with one sheet per
// scored week plus a cumulative sheet, for moderators who want the raw
// standings outside the chat client.
func (s *LeaderboardService) ExportChallengeWorkbook(ctx context.Context, challengeID int64, weekCount int) ([]byte, error) {
	logs, err := s.logs.ListChallengeLogs(ctx, challengeID, weekCount)
	if err != nil {
		return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
	}
	goals, err := s.declaredGoals(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
	}

	byWeek := make(map[int][]*scoringdomain.MessageLog)
	for i := range logs {
		byWeek[logs[i].WeekNumber] = append(byWeek[logs[i].WeekNumber], &logs[i].MessageLog)
	}

	f := excelize.NewFile()
	defer f.Close()

	total := leaderboarddomain.BuildCumulativeRanking(logs)
	leaderboarddomain.ApplyGoals(total, goals)
	if err := f.SetSheetName(f.GetSheetName(0), "Total"); err != nil {
		return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
	}
	if err := writeRankingSheet(f, "Total", total); err != nil {
		return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
	}

	for week := 1; week <= weekCount; week++ {
		weekLogs, ok := byWeek[week]
		if !ok {
			continue
		}
		sheet := fmt.Sprintf("Week %d", week)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
		}
		entries := leaderboarddomain.BuildRanking(weekLogs)
		leaderboarddomain.ApplyGoals(entries, goals)
		if err := writeRankingSheet(f, sheet, entries); err != nil {
			return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ExportChallengeWorkbook: %w", err)
	}
	return buffer.Bytes(), nil
}

func writeRankingSheet(f *excelize.File, sheet string, entries []leaderboarddomain.Entry) error {
	header := []interface{}{"Rank", "User", "Pomodoro", "Bonus", "Scored", "Goal", "Goal met", "Messages"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, entry := range entries {
		row := []interface{}{
			i + 1,
			string(entry.UserID),
			entry.Pomodoro,
			entry.Bonus,
			entry.Scored(),
			entry.Goal,
			entry.GoalAchieved(),
			entry.Messages,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
