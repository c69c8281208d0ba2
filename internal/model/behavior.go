package model

import "time"

// BehaviorCategory is one of the predefined behavior-log categories.
type BehaviorCategory string

const (
	BehaviorSharing    BehaviorCategory = "sharing"
	BehaviorListening  BehaviorCategory = "listening"
	BehaviorChores     BehaviorCategory = "chores"
	BehaviorHomework   BehaviorCategory = "homework"
	BehaviorKindness   BehaviorCategory = "kindness"
	BehaviorHonesty    BehaviorCategory = "honesty"
	BehaviorPatience   BehaviorCategory = "patience"
	BehaviorScreenTime BehaviorCategory = "screen-time"
)

// BehaviorCategories lists every known category in display order.
var BehaviorCategories = []BehaviorCategory{
	BehaviorSharing,
	BehaviorListening,
	BehaviorChores,
	BehaviorHomework,
	BehaviorKindness,
	BehaviorHonesty,
	BehaviorPatience,
	BehaviorScreenTime,
}

// Valid reports whether c is one of the predefined categories.
func (c BehaviorCategory) Valid() bool {
	for _, known := range BehaviorCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Choice labels a logged behavior as a good or bad choice.
type Choice string

const (
	ChoiceGood Choice = "good"
	ChoiceBad  Choice = "bad"
)

// Valid reports whether c is a known choice.
func (c Choice) Valid() bool {
	return c == ChoiceGood || c == ChoiceBad
}

// BehaviorLog is one recorded behavior observation. Logs are independent of
// events; they feed the daily mood summary.
type BehaviorLog struct {
	ID        string           `json:"id" db:"id"`
	Behavior  BehaviorCategory `json:"behavior" db:"behavior"`
	Choice    Choice           `json:"choice" db:"choice"`
	Situation string           `json:"situation" db:"situation"`
	Response  string           `json:"response" db:"response"`
	Outcome   string           `json:"outcome" db:"outcome"`
	Timestamp time.Time        `json:"timestamp" db:"timestamp"`
}
