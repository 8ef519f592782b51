package scoringdomain

// PointTotals is the per-message point breakdown the ledger stores.
type PointTotals struct {
	Pomodoro int
	Bonus    int
	Goal     int
}

// Total is the sum across all buckets. A message totaling zero is never
// logged.
func (t PointTotals) Total() int {
	return t.Pomodoro + t.Bonus + t.Goal
}

// Scored is the ranked portion: goal points are informational.
func (t PointTotals) Scored() int {
	return t.Pomodoro + t.Bonus
}

// Calculate sums point values for every detected token with an exact
// configured match. Unmatched tokens are silently ignored. A
// challenge-scoped emoji shadows a global one with the same code. Reward
// emoji are decorative and contribute nothing; the aggregator applies
// them when rendering.
func Calculate(matches Matches, config []Emoji) PointTotals {
	lookup := make(map[string]Emoji, len(config))
	for _, e := range config {
		if !e.Active {
			continue
		}
		if prev, ok := lookup[e.Code]; ok && prev.ChallengeID != nil && e.ChallengeID == nil {
			continue
		}
		lookup[e.Code] = e
	}

	var totals PointTotals
	for _, token := range matches.All() {
		e, ok := lookup[token]
		if !ok {
			continue
		}
		switch e.Category {
		case CategoryPomodoro:
			totals.Pomodoro += e.Points
		case CategoryBonus:
			totals.Bonus += e.Points
		case CategoryGoal:
			totals.Goal += e.Points
		case CategoryReward:
			// decorative only
		}
	}
	return totals
}
