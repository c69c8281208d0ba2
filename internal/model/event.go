package model

import "time"

// EntryType classifies what kind of item an event or preset is.
type EntryType string

const (
	EntryTypeTask        EntryType = "task"
	EntryTypeEvent       EntryType = "event"
	EntryTypeAppointment EntryType = "appointment"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeTask, EntryTypeEvent, EntryTypeAppointment:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of a scheduled event.
type EventStatus string

const (
	StatusScheduled   EventStatus = "scheduled"
	StatusCompleted   EventStatus = "completed"
	StatusCancelled   EventStatus = "cancelled"
	StatusRescheduled EventStatus = "rescheduled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// Recurrence selects how an event repeats. Only simple unbounded
// daily/weekly/monthly repetition is supported.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is one of the known recurrence rules.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// NotificationLead is the reminder lead time in minutes before an event's
// start. Zero means no reminder.
type NotificationLead int

const (
	LeadNone NotificationLead = 0
	Lead5    NotificationLead = 5
	Lead15   NotificationLead = 15
	Lead30   NotificationLead = 30
)

// Valid reports whether l is one of the supported lead times.
func (l NotificationLead) Valid() bool {
	switch l {
	case LeadNone, Lead5, Lead15, Lead30:
		return true
	}
	return false
}

// Event is a persisted, member-owned calendar entry. Date is an ISO-8601
// calendar date ("2006-01-02"); StartTime and EndTime are wall-clock
// "HH:MM" strings on a 15-minute grid. StartTime < EndTime is validated at
// write time, not enforced by the store.
type Event struct {
	ID           string           `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Type         EntryType        `json:"type" db:"type"`
	Status       EventStatus      `json:"status" db:"status"`
	Date         string           `json:"date" db:"date"`
	StartTime    string           `json:"startTime" db:"start_time"`
	EndTime      string           `json:"endTime" db:"end_time"`
	MemberID     string           `json:"memberId" db:"member_id"`
	Color        string           `json:"color" db:"color"`
	Location     string           `json:"location,omitempty" db:"location"`
	Description  string           `json:"description,omitempty" db:"description"`
	Notification NotificationLead `json:"notification" db:"notification"`
	Recurrence   Recurrence       `json:"recurrence" db:"recurrence"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}

// IsRecurring reports whether the event repeats. Recurring events
// participate in the timeline only through their expanded instances.
func (e Event) IsRecurring() bool {
	return e.Recurrence != "" && e.Recurrence != RecurrenceNone
}
