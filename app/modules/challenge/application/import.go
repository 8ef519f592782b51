package challengeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	challengedomain "github.com/focus-guild/pomo-bot/app/modules/challenge/domain"
	challengedb "github.com/focus-guild/pomo-bot/app/modules/challenge/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ImportInput identifies the channel and challenge to backfill.
type ImportInput struct {
	GuildID   sharedtypes.GuildID
	ChannelID sharedtypes.ChannelID
	Semester  int
	Theme     string
}

// ImportReport summarizes a finished backfill. Individual message
// failures become warnings, not an aborted import.
type ImportReport struct {
	Challenge *challengedomain.Challenge
	Weeks     int
	Processed int
	Skipped   int
	Warnings  []string
}

// ImportChallenge scans a channel's threads for the Q{semester}-week{N}
// pattern, derives the challenge date range from the matched threads,
// persists the challenge and its weeks, and replays every historical
// message through the live processing path. The imported challenge stays
// inactive until an administrator starts it.
func (s *ChallengeService) ImportChallenge(ctx context.Context, input ImportInput) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "ImportChallenge", input.GuildID, func(ctx context.Context) (results.OperationResult, error) {
		threads, err := platform.WithRetry(ctx, s.logger, "ListThreads", func() ([]platform.ThreadInfo, error) {
			return s.gateway.ListThreads(ctx, input.ChannelID)
		})
		if err != nil {
			return results.OperationResult{}, fmt.Errorf("failed to list threads: %w", err)
		}

		report := &ImportReport{}
		matched := s.matchThreads(threads, input.Semester, report)
		if len(matched) == 0 {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  fmt.Sprintf("no threads matching Q%d-week{N} found", input.Semester),
			}), nil
		}

		challengeInput, importedWeeks, err := deriveChallenge(input, matched)
		if err != nil {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  err.Error(),
			}), nil
		}
		if err := challengeInput.Validate(s.now(), true); err != nil {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  err.Error(),
			}), nil
		}

		challenge, err := s.repo.CreateImported(ctx, &challengedomain.Challenge{
			GuildID:   challengeInput.GuildID,
			Semester:  challengeInput.Semester,
			Theme:     challengeInput.Theme,
			StartDate: challengeInput.StartDate,
			EndDate:   challengeInput.EndDate,
			WeekCount: challengeInput.WeekCount,
		}, importedWeeks)
		if errors.Is(err, challengedb.ErrDuplicateSemester) {
			return results.FailureResult(&ChallengeFailurePayload{
				GuildID: input.GuildID,
				Reason:  err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		report.Challenge = challenge
		report.Weeks = len(importedWeeks)

		for _, iw := range importedWeeks {
			s.backfillThread(ctx, iw.ThreadID, report)
		}

		s.logger.InfoContext(ctx, "Import finished",
			slog.String("guild_id", string(input.GuildID)),
			slog.Int("semester", input.Semester),
			slog.Int("weeks", report.Weeks),
			slog.Int("processed", report.Processed),
			slog.Int("skipped", report.Skipped),
			slog.Int("warnings", len(report.Warnings)),
		)
		return results.SuccessResult(report), nil
	})
}

// matchThreads keeps threads whose name parses for the wanted semester.
// A duplicate week number keeps the earliest-created thread.
func (s *ChallengeService) matchThreads(threads []platform.ThreadInfo, semester int, report *ImportReport) map[int]platform.ThreadInfo {
	matched := make(map[int]platform.ThreadInfo)
	for _, t := range threads {
		sem, weekNumber, ok := challengedomain.ParseThreadName(t.Name)
		if !ok || sem != semester {
			continue
		}
		if prev, dup := matched[weekNumber]; dup {
			keep, drop := prev, t
			if t.CreatedAt.Before(prev.CreatedAt) {
				keep, drop = t, prev
			}
			matched[weekNumber] = keep
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("duplicate thread for week %d: keeping %q, ignoring %q", weekNumber, keep.Name, drop.Name))
			continue
		}
		matched[weekNumber] = t
	}
	return matched
}

// deriveChallenge reconstructs the challenge's date range from the
// matched threads: week N's thread is created during week N, so the
// earliest regular week anchors the start Monday.
func deriveChallenge(input ImportInput, matched map[int]platform.ThreadInfo) (challengedomain.NewChallengeInput, []challengedb.ImportedWeek, error) {
	numbers := make([]int, 0, len(matched))
	minRegular, maxRegular := 0, 0
	for n := range matched {
		numbers = append(numbers, n)
		if n < challengedomain.GoalWeekNumber+1 {
			continue
		}
		if minRegular == 0 || n < minRegular {
			minRegular = n
		}
		if n > maxRegular {
			maxRegular = n
		}
	}
	sort.Ints(numbers)
	if minRegular == 0 {
		return challengedomain.NewChallengeInput{}, nil, errors.New("no regular week threads found, only a goal thread")
	}

	anchor := matched[minRegular]
	startDate := mondayOf(challengedomain.CivilDate(anchor.CreatedAt)).AddDate(0, 0, -(minRegular-1)*7)
	weekCount := maxRegular
	endDate := startDate.AddDate(0, 0, weekCount*7-1)

	weeks := make([]challengedb.ImportedWeek, 0, len(numbers))
	for _, n := range numbers {
		weeks = append(weeks, challengedb.ImportedWeek{
			WeekNumber: n,
			ThreadID:   matched[n].ID,
		})
	}

	return challengedomain.NewChallengeInput{
		GuildID:   input.GuildID,
		Semester:  input.Semester,
		Theme:     input.Theme,
		StartDate: startDate,
		EndDate:   endDate,
		WeekCount: weekCount,
	}, weeks, nil
}

// backfillThread pages through a thread oldest-to-newest and replays each
// message through the ledger. Already-logged messages count as skipped;
// per-message failures become warnings.
func (s *ChallengeService) backfillThread(ctx context.Context, threadID sharedtypes.ThreadID, report *ImportReport) {
	var afterID sharedtypes.MessageID
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("thread %s: %v", threadID, err))
			return
		}

		batch, err := platform.WithRetry(ctx, s.logger, "FetchMessages", func() ([]platform.ChannelMessage, error) {
			return s.gateway.FetchMessages(ctx, threadID, afterID, s.importCfg.BatchSize)
		})
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("thread %s: history fetch failed: %v", threadID, err))
			return
		}
		if len(batch) == 0 {
			return
		}
		s.metrics.ImportBatches.Inc()

		for _, msg := range batch {
			result, err := s.processor.ProcessHistorical(ctx, threadID, msg)
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("message %s: %v", msg.ID, err))
				continue
			}
			if result.Success != nil {
				report.Processed++
			} else {
				report.Skipped++
			}
		}
		afterID = batch[len(batch)-1].ID

		if len(batch) < s.importCfg.BatchSize {
			return
		}
	}
}

// mondayOf returns the Monday of the civil week containing d.
func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
