// Package scoringdomain holds the pure scoring core: emoji detection,
// the category enum, and point calculation.
package scoringdomain

import "fmt"

// Category is the closed set of emoji scoring categories. The calculator
// switches over it exhaustively, so adding a category is a compile-time
// checked change.
type Category int

const (
	CategoryPomodoro Category = iota
	CategoryBonus
	CategoryReward
	CategoryGoal
)

var categoryNames = map[Category]string{
	CategoryPomodoro: "pomodoro",
	CategoryBonus:    "bonus",
	CategoryReward:   "reward",
	CategoryGoal:     "goal",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory converts the storage/config spelling into a Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown emoji category %q", s)
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}
