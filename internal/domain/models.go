package domain

import "time"

// ScheduleKind selects which notification a schedule sends and how its fire
// time relates to the event date.
type ScheduleKind string

const (
	KindReminder ScheduleKind = "reminder" // daysBefore the event
	KindStart    ScheduleKind = "start"    // daysBefore the event (usually 0)
	KindMaterial ScheduleKind = "material" // daysBefore the event
	KindFeedback ScheduleKind = "feedback" // daysAfter the event
)

// Valid reports whether k is one of the known schedule kinds.
func (k ScheduleKind) Valid() bool {
	switch k {
	case KindReminder, KindStart, KindMaterial, KindFeedback:
		return true
	}
	return false
}

// Label returns the human label used in subjects and prompts.
func (k ScheduleKind) Label() string {
	switch k {
	case KindReminder:
		return "活動前提醒"
	case KindStart:
		return "活動開始通知"
	case KindMaterial:
		return "行前教材通知"
	case KindFeedback:
		return "活動後回饋"
	}
	return "活動通知"
}

// Schedule is a declarative notification rule bound to one event.
// Fired is terminal: once set it is never unset, and a fired schedule is
// never selected for dispatch again.
type Schedule struct {
	ID         string       `bson:"_id" json:"id"`
	EventID    string       `bson:"event_id" json:"eventId"`
	EventTitle string       `bson:"event_title" json:"eventTitle"`
	EventDate  string       `bson:"event_date" json:"eventDate"` // 2006-01-02
	Kind       ScheduleKind `bson:"kind" json:"kind"`
	DaysBefore int          `bson:"days_before" json:"daysBefore"`
	DaysAfter  int          `bson:"days_after" json:"daysAfter"`
	Hour       int          `bson:"hour" json:"hour"`
	Minute     int          `bson:"minute" json:"minute"`
	Enabled    bool         `bson:"enabled" json:"enabled"`
	Fired      bool         `bson:"fired" json:"fired"`
	FiredAt    *time.Time   `bson:"fired_at,omitempty" json:"firedAt,omitempty"`
	CreatedAt  time.Time    `bson:"created_at" json:"createdAt"`
}

// ScheduleUpdate holds operator-editable schedule fields; nil means unchanged.
// Fired/FiredAt are excluded on purpose — consumption goes through MarkFired.
type ScheduleUpdate struct {
	EventTitle *string
	EventDate  *string
	DaysBefore *int
	DaysAfter  *int
	Hour       *int
	Minute     *int
	Enabled    *bool
}

// Event is the scheduling core's read-mostly view of a workshop event.
type Event struct {
	ID              string    `bson:"_id" json:"id"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description" json:"description"`
	Date            string    `bson:"date" json:"date"` // 2006-01-02
	Time            string    `bson:"time" json:"time"` // 15:04
	EndTime         string    `bson:"end_time" json:"endTime"`
	Location        string    `bson:"location" json:"location"`
	MaxParticipants int       `bson:"max_participants" json:"maxParticipants"`
	Status          string    `bson:"status" json:"status"` // active, draft, ended
	Registrations   int       `bson:"registrations" json:"registrations"`
	Notifications   int       `bson:"notifications" json:"notifications"`
	InstructorName  string    `bson:"instructor_name" json:"instructorName"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}

const (
	EventStatusActive = "active"
	EventStatusDraft  = "draft"
	EventStatusEnded  = "ended"
)

// EventUpdate holds editable event fields; nil means unchanged. The delta
// counters are applied atomically where the backend supports it.
type EventUpdate struct {
	Title              *string
	Description        *string
	Date               *string
	Time               *string
	EndTime            *string
	Location           *string
	MaxParticipants    *int
	Status             *string
	InstructorName     *string
	RegistrationsDelta int
	NotificationsDelta int
}

// Registration is one signup for one event. Only confirmed registrations are
// eligible notification recipients.
type Registration struct {
	ID        string    `bson:"_id" json:"id"`
	EventID   string    `bson:"event_id" json:"eventId"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Status    string    `bson:"status" json:"status"` // pending, confirmed, cancelled
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// ChatBinding maps a registrant's contact email to a chat push identity so
// delivery can fan out beyond email.
type ChatBinding struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	ChatID    int64     `bson:"chat_id" json:"chatId"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// DeliveryError records one failed delivery attempt inside a dispatch.
type DeliveryError struct {
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"` // email or chat
	Reason    string `json:"reason"`
}

// DispatchResult is the ephemeral outcome of executing one schedule.
// Success means the dispatch ran to completion and the schedule was consumed,
// not that every delivery succeeded. SentCount/TotalCount cover the email
// channel (one attempt per resolved recipient); chat pushes are counted
// separately.
type DispatchResult struct {
	Success    bool            `json:"success"`
	Provider   string          `json:"provider,omitempty"`
	SentCount  int             `json:"sentCount"`
	TotalCount int             `json:"totalCount"`
	ChatSent   int             `json:"chatSent"`
	ChatTotal  int             `json:"chatTotal"`
	Errors     []DeliveryError `json:"errors,omitempty"`
}
