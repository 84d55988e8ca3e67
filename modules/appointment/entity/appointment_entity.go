package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type AttendeeStatus string

const (
	AttendeePending  AttendeeStatus = "pending"
	AttendeeAccepted AttendeeStatus = "accepted"
	AttendeeDeclined AttendeeStatus = "declined"
)

func (s AttendeeStatus) Valid() bool {
	switch s {
	case AttendeePending, AttendeeAccepted, AttendeeDeclined:
		return true
	}
	return false
}

const (
	MinTitleLength       = 5
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MinDuration          = 15
)

// ValidationError carries a client-facing message.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrTitleLength       ValidationError = "Title must be between 5 and 200 characters"
	ErrDescriptionLength ValidationError = "Description cannot exceed 1000 characters"
	ErrDurationTooShort  ValidationError = "Duration must be at least 15 minutes"
	ErrNotInFuture       ValidationError = "Scheduled date must be in the future"
	ErrInvalidStatus     ValidationError = "Status must be one of: scheduled, completed, cancelled"
)

type Appointment struct {
	ID            uuid.UUID         `db:"id"`
	Title         string            `db:"title"`
	Description   *string           `db:"description"`
	ManagerID     uuid.UUID         `db:"manager_id"`
	ScheduledDate time.Time         `db:"scheduled_date"`
	Duration      int               `db:"duration"`
	Status        AppointmentStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`

	Attendees []Attendee `db:"-"`
}

// Attendee is one row of appointment_attendees.
type Attendee struct {
	AppointmentID uuid.UUID      `db:"appointment_id"`
	UserID        uuid.UUID      `db:"user_id"`
	Position      int            `db:"position"`
	Status        AttendeeStatus `db:"status"`
	RespondedAt   *time.Time     `db:"responded_at"`
	Notes         *string        `db:"notes"`
	CreatedAt     time.Time      `db:"created_at"`
}

type PaginatedAppointmentEntity struct {
	Items      []Appointment
	TotalItems int
	PageNumber int
	PageSize   int
}

// Summary aggregates a filtered appointment set.
type Summary struct {
	Total           int
	StatusBreakdown map[string]int
	AvgDuration     float64
}

// HasAttendee reports whether userID holds an entry on the appointment.
func (a *Appointment) HasAttendee(userID uuid.UUID) bool {
	return a.Attendee(userID) != nil
}

func (a *Appointment) Attendee(userID uuid.UUID) *Attendee {
	for i := range a.Attendees {
		if a.Attendees[i].UserID == userID {
			return &a.Attendees[i]
		}
	}
	return nil
}

// VisibleTo reports whether userID is the manager or an attendee.
func (a *Appointment) VisibleTo(userID uuid.UUID) bool {
	return a.ManagerID == userID || a.HasAttendee(userID)
}

// CountByStatus tallies attendee responses.
func (a *Appointment) CountByStatus() map[AttendeeStatus]int {
	counts := map[AttendeeStatus]int{
		AttendeePending:  0,
		AttendeeAccepted: 0,
		AttendeeDeclined: 0,
	}
	for _, at := range a.Attendees {
		counts[at.Status]++
	}
	return counts
}

// MergeAttendees builds the attendee list for userIDs in order. Users already on the
// appointment keep their entry untouched; new users start pending.
func MergeAttendees(existing []Attendee, appointmentID uuid.UUID, userIDs []uuid.UUID) []Attendee {
	byUser := make(map[uuid.UUID]Attendee, len(existing))
	for _, at := range existing {
		byUser[at.UserID] = at
	}

	merged := make([]Attendee, 0, len(userIDs))
	for i, id := range userIDs {
		at, ok := byUser[id]
		if !ok {
			at = Attendee{AppointmentID: appointmentID, UserID: id, Status: AttendeePending}
		}
		at.Position = i
		merged = append(merged, at)
	}
	return merged
}

// NewAppointment validates the fields and returns a scheduled appointment whose attendees are all pending.
func NewAppointment(managerID uuid.UUID, title string, description *string, scheduledDate time.Time, duration int, attendeeIDs []uuid.UUID, now time.Time) (*Appointment, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	description = NormalizeDescription(description)
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	if err := ValidateDuration(duration); err != nil {
		return nil, err
	}
	if err := ValidateScheduledDate(scheduledDate, now); err != nil {
		return nil, err
	}

	return &Appointment{
		Title:         title,
		Description:   description,
		ManagerID:     managerID,
		ScheduledDate: scheduledDate,
		Duration:      duration,
		Status:        StatusScheduled,
		Attendees:     MergeAttendees(nil, uuid.Nil, attendeeIDs),
	}, nil
}

func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < MinTitleLength || n > MaxTitleLength {
		return ErrTitleLength
	}
	return nil
}

func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return ErrDescriptionLength
	}
	return nil
}

func ValidateDuration(minutes int) error {
	if minutes < MinDuration {
		return ErrDurationTooShort
	}
	return nil
}

// ValidateScheduledDate requires the date to be strictly after now.
func ValidateScheduledDate(date, now time.Time) error {
	if !date.After(now) {
		return ErrNotInFuture
	}
	return nil
}

func ValidateStatus(status string) error {
	if !AppointmentStatus(status).Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// NormalizeDescription trims the description, mapping blank to nil.
func NormalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	d := strings.TrimSpace(*description)
	if d == "" {
		return nil
	}
	return &d
}
