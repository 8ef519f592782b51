package challengedomain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Thread names follow Q{semester}-week{N}, case-insensitively, with an
// optional -suffix tail (the goal thread uses one). Threads that do not
// match are invisible to both the live week lookup and the importer.
var threadNamePattern = regexp.MustCompile(`(?i)^q(\d+)-week(\d+)(?:-\S+)?$`)

// ThreadName renders the canonical name for a regular week thread.
func ThreadName(semester, weekNumber int) string {
	return fmt.Sprintf("Q%d-week%d", semester, weekNumber)
}

// GoalThreadName renders the name for the week-0 goal thread.
func GoalThreadName(semester int) string {
	return fmt.Sprintf("Q%d-week%d-goals", semester, GoalWeekNumber)
}

// ParseThreadName extracts semester and week number from a thread name.
func ParseThreadName(name string) (semester, weekNumber int, ok bool) {
	m := threadNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	semester, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	weekNumber, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return semester, weekNumber, true
}
