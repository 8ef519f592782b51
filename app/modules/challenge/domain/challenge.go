// Package challengedomain holds the challenge/week aggregate and its
// lifecycle rules.
package challengedomain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Validation errors. Rejected synchronously; no state is mutated.
var (
	ErrSemesterRange     = errors.New("semester must be between 1 and 5")
	ErrThemeLength       = errors.New("theme must be between 1 and 255 characters")
	ErrStartNotMonday    = errors.New("start date must be a Monday")
	ErrEndNotSunday      = errors.New("end date must be a Sunday")
	ErrWeekCountMismatch = errors.New("week count does not match the date range")
	ErrWeekCountRange    = errors.New("week count must be between 1 and 52")
	ErrStartInPast       = errors.New("start date must not be in the past")
	ErrAlreadyStarted    = errors.New("challenge is already started")
	ErrNotStarted        = errors.New("challenge is not started")
)

// Challenge is one semester-long study challenge on a guild.
//
// The three booleans are independent: started is a permanent history
// marker, active gates message processing, current marks the challenge
// the automation works on. At most one challenge per guild is current;
// the guild row's current_challenge_id owns that invariant.
type Challenge struct {
	ID        int64
	GuildID   sharedtypes.GuildID
	Semester  int
	Theme     string
	StartDate time.Time // civil date, UTC midnight, always a Monday
	EndDate   time.Time // civil date, UTC midnight, always a Sunday
	WeekCount int
	Started   bool
	Active    bool
	Current   bool
}

// NewChallengeInput is the validated input for creating a challenge.
type NewChallengeInput struct {
	GuildID   sharedtypes.GuildID
	Semester  int
	Theme     string
	StartDate time.Time
	EndDate   time.Time
	WeekCount int
}

// Validate applies the creation rules. now is the caller's clock; the
// past check compares civil dates, so creating on the start day itself is
// allowed. allowPast is set by the historical importer, which persists
// ranges that are over by definition.
func (in NewChallengeInput) Validate(now time.Time, allowPast bool) error {
	if in.Semester < 1 || in.Semester > 5 {
		return ErrSemesterRange
	}
	// Characters, not bytes: the column is varchar(255) and multi-byte
	// themes must not be rejected early.
	if n := utf8.RuneCountInString(in.Theme); n < 1 || n > 255 {
		return ErrThemeLength
	}
	start := CivilDate(in.StartDate)
	end := CivilDate(in.EndDate)
	if start.Weekday() != time.Monday {
		return ErrStartNotMonday
	}
	if end.Weekday() != time.Sunday {
		return ErrEndNotSunday
	}
	derived := DerivedWeekCount(start, end)
	if derived != in.WeekCount {
		return fmt.Errorf("%w: range spans %d weeks, got %d", ErrWeekCountMismatch, derived, in.WeekCount)
	}
	if in.WeekCount < 1 || in.WeekCount > 52 {
		return ErrWeekCountRange
	}
	if !allowPast && start.Before(CivilDate(now)) {
		return ErrStartInPast
	}
	return nil
}

// CivilDate truncates a timestamp to its UTC civil date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DerivedWeekCount computes the number of Monday-to-Sunday weeks spanned
// by the inclusive [start, end] range.
func DerivedWeekCount(start, end time.Time) int {
	days := int(CivilDate(end).Sub(CivilDate(start)).Hours()/24) + 1
	return days / 7
}

// ExpectedWeekNumber returns which week of the challenge the given date
// falls in, starting at 1 on the start date.
func (c *Challenge) ExpectedWeekNumber(today time.Time) int {
	days := int(CivilDate(today).Sub(CivilDate(c.StartDate)).Hours() / 24)
	return days/7 + 1
}

// WeekEndDate returns the civil end date (Sunday) of the given week.
// Week 0 shares week 1's dates; its goal collection runs up to the start.
func (c *Challenge) WeekEndDate(weekNumber int) time.Time {
	n := weekNumber
	if n < 1 {
		n = 1
	}
	return CivilDate(c.StartDate).AddDate(0, 0, n*7-1)
}

// CoversDate reports whether the challenge's date range includes the
// given civil date.
func (c *Challenge) CoversDate(today time.Time) bool {
	d := CivilDate(today)
	return !d.Before(CivilDate(c.StartDate)) && !d.After(CivilDate(c.EndDate))
}
