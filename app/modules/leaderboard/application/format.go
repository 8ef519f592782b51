package leaderboardservice

import (
	"fmt"
	"strings"

	leaderboarddomain "github.com/focus-guild/pomo-bot/app/modules/leaderboard/domain"
)

// FormatWeekRanking renders the weekly standings message posted into
// the week thread. Reward emoji decorate the top ranks in
// configuration order; a check mark flags users whose scored points
// reached their goal.
func FormatWeekRanking(semester, weekNumber int, entries []leaderboarddomain.Entry, rewards []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Ranking Q%d week %d**\n", semester, weekNumber)
	if len(entries) == 0 {
		b.WriteString("No scored messages this week.")
		return b.String()
	}
	writeEntries(&b, entries, rewards)
	return b.String()
}

// FormatCumulativeRanking renders challenge-wide standings over weeks
// 1..uptoWeek.
func FormatCumulativeRanking(semester, uptoWeek int, entries []leaderboarddomain.Entry, rewards []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Standings Q%d after week %d**\n", semester, uptoWeek)
	if len(entries) == 0 {
		b.WriteString("No scored messages yet.")
		return b.String()
	}
	writeEntries(&b, entries, rewards)
	return b.String()
}

func writeEntries(b *strings.Builder, entries []leaderboarddomain.Entry, rewards []string) {
	for i, entry := range entries {
		fmt.Fprintf(b, "%d. <@%s> — %d points (%d pomodoro, %d bonus)",
			i+1, entry.UserID, entry.Scored(), entry.Pomodoro, entry.Bonus)
		if entry.GoalAchieved() {
			b.WriteString(" ✅")
		}
		if i < len(rewards) {
			b.WriteString(" ")
			b.WriteString(rewards[i])
		}
		b.WriteString("\n")
	}
}
