package entity

import (
	"time"

	"github.com/google/uuid"
)

// Scope narrows aggregates to appointments the given user attends. A nil AttendeeID means all appointments.
type Scope struct {
	AttendeeID *uuid.UUID
}

func AttendeeScope(userID uuid.UUID) Scope {
	return Scope{AttendeeID: &userID}
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

type MonthBucket struct {
	Month         int `db:"month"`
	Total         int `db:"total"`
	Scheduled     int `db:"scheduled"`
	Completed     int `db:"completed"`
	Cancelled     int `db:"cancelled"`
	TotalDuration int `db:"total_duration"`
}

type DayBucket struct {
	Day       time.Time `db:"day"`
	Total     int       `db:"total"`
	Scheduled int       `db:"scheduled"`
	Completed int       `db:"completed"`
	Cancelled int       `db:"cancelled"`
}

type RangeStats struct {
	TotalAppointments int     `db:"total_appointments"`
	Scheduled         int     `db:"scheduled"`
	Completed         int     `db:"completed"`
	Cancelled         int     `db:"cancelled"`
	TotalDuration     int     `db:"total_duration"`
	AvgDuration       float64 `db:"avg_duration"`
	TotalAttendees    int     `db:"total_attendees"`
}

type ScheduledStats struct {
	Count       int     `db:"count"`
	AvgDuration float64 `db:"avg_duration"`
	ThisWeek    int     `db:"this_week"`
	ThisMonth   int     `db:"this_month"`
}

type ManagerCount struct {
	ManagerID uuid.UUID `db:"manager_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Count     int       `db:"count"`
}

type AttendedStats struct {
	Count         int     `db:"count"`
	TotalDuration int     `db:"total_duration"`
	AvgDuration   float64 `db:"avg_duration"`
	// AcceptedRatio is the mean per-appointment share of accepted attendees, in [0, 1].
	AcceptedRatio float64 `db:"accepted_ratio"`
}

type UserActivity struct {
	Created         int `db:"created"`
	Assigned        int `db:"assigned"`
	Accepted        int `db:"accepted"`
	Declined        int `db:"declined"`
	Attended        int `db:"attended"`
	AttendedMinutes int `db:"attended_minutes"`
}

type StatusSummary struct {
	Total             int     `db:"total"`
	Scheduled         int     `db:"scheduled"`
	Completed         int     `db:"completed"`
	Cancelled         int     `db:"cancelled"`
	ThisWeek          int     `db:"this_week"`
	ThisMonth         int     `db:"this_month"`
	LastMonth         int     `db:"last_month"`
	TotalAttendees    int     `db:"total_attendees"`
	PendingResponses  int     `db:"pending_responses"`
	AcceptedResponses int     `db:"accepted_responses"`
	DeclinedResponses int     `db:"declined_responses"`
	AvgResponseHours  float64 `db:"avg_response_hours"`
}

// AppointmentDetail is a flat appointment row attached to count reports on request.
type AppointmentDetail struct {
	ID               uuid.UUID `db:"id"`
	Title            string    `db:"title"`
	Status           string    `db:"status"`
	ScheduledDate    time.Time `db:"scheduled_date"`
	Duration         int       `db:"duration"`
	ManagerID        uuid.UUID `db:"manager_id"`
	ManagerFirstName string    `db:"manager_first_name"`
	ManagerLastName  string    `db:"manager_last_name"`
	AttendeeCount    int       `db:"attendee_count"`
}
