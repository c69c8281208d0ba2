package model

// ExternalMemberID is the synthetic lane used to display read-only
// external-calendar entries. It never exists as a stored member.
const ExternalMemberID = "external-calendar"

// Member is one person on the board. Order defines the lane/display
// sequence; values are dense but gaps are tolerated.
type Member struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Order int    `json:"order" db:"order_num"`
}

// Preset is a reusable template used to prefill new events.
// Its lifecycle is independent of any event.
type Preset struct {
	ID    string    `json:"id" db:"id"`
	Title string    `json:"title" db:"title"`
	Type  EntryType `json:"type" db:"type"`
}
