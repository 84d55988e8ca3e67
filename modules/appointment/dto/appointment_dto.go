package dto

import (
	"time"

	coreDto "appointment-scheduler/core/dto"
	userDto "appointment-scheduler/modules/user/dto"

	"github.com/google/uuid"
)

// ===================== Request DTOs =====================

type CreateAppointmentRequest struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	AttendeeIDs   []string `json:"attendeeIds"`
	ScheduledDate string   `json:"scheduledDate"`
	Duration      *int     `json:"duration"`
}

// UpdateAppointmentRequest is a partial update; nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	AttendeeIDs   []string `json:"attendeeIds"`
	ScheduledDate *string  `json:"scheduledDate"`
	Duration      *int     `json:"duration"`
	Status        *string  `json:"status"`
}

func (r *UpdateAppointmentRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.AttendeeIDs == nil &&
		r.ScheduledDate == nil && r.Duration == nil && r.Status == nil
}

// RespondRequest is the body of accept/decline. Reason is the decline wording of Notes.
type RespondRequest struct {
	Notes  *string `json:"notes"`
	Reason *string `json:"reason"`
}

func (r *RespondRequest) Note() *string {
	if r == nil {
		return nil
	}
	if r.Reason != nil && *r.Reason != "" {
		return r.Reason
	}
	return r.Notes
}

// AppointmentQuery holds the list/filter/export criteria parsed from the query string.
type AppointmentQuery struct {
	StartDate      *time.Time
	EndDate        *time.Time
	Statuses       []string
	Type           string
	MinDuration    *int
	MaxDuration    *int
	ManagerID      *uuid.UUID
	AttendeeStatus string
	ResponseStatus string
	Format         string
	// Raw echoes the query string back in filter and export responses.
	Raw map[string]string
}

// ===================== Response DTOs =====================

type AttendeeResponse struct {
	User        userDto.UserSummary `json:"user"`
	Status      string              `json:"status"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   *string             `json:"description,omitempty"`
	Manager       userDto.UserSummary `json:"manager"`
	Attendees     []AttendeeResponse  `json:"attendees"`
	ScheduledDate time.Time           `json:"scheduledDate"`
	Duration      int                 `json:"duration"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type ResponseCounts struct {
	TotalAttendees int `json:"totalAttendees"`
	Accepted       int `json:"accepted"`
	Declined       int `json:"declined"`
	Pending        int `json:"pending"`
}

type StatusSummaryResponse struct {
	AppointmentID uuid.UUID           `json:"appointmentId"`
	Title         string              `json:"title"`
	Status        string              `json:"status"`
	ScheduledDate time.Time           `json:"scheduledDate"`
	Manager       userDto.UserSummary `json:"manager"`
	Attendees     []AttendeeResponse  `json:"attendees"`
	Summary       ResponseCounts      `json:"summary"`
}

type FilterSummary struct {
	TotalAppointments int            `json:"totalAppointments"`
	StatusBreakdown   map[string]int `json:"statusBreakdown"`
	AvgDuration       int            `json:"avgDuration"`
}

type FilterResult struct {
	Page    *coreDto.Page[AppointmentResponse]
	Summary FilterSummary
	Filters map[string]string
}

// FilteredAppointmentsResponse is the body of GET /appointments/filter.
type FilteredAppointmentsResponse struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       []AppointmentResponse `json:"data"`
	Summary    FilterSummary         `json:"summary"`
	Filters    map[string]string     `json:"filters"`
	Pagination *coreDto.Pagination   `json:"pagination"`
}

// UserAppointments is a page of another user's appointments.
type UserAppointments struct {
	User userDto.UserSummary
	Page *coreDto.Page[AppointmentResponse]
}

// UserAppointmentsResponse is the body of GET /appointments/users/:userId/{created,assigned}.
type UserAppointmentsResponse struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       []AppointmentResponse `json:"data"`
	User       userDto.UserSummary   `json:"user"`
	Pagination *coreDto.Pagination   `json:"pagination"`
}

type ExportDocument struct {
	ExportDate   time.Time             `json:"exportDate"`
	TotalRecords int                   `json:"totalRecords"`
	Filters      map[string]string     `json:"filters"`
	Data         []AppointmentResponse `json:"data"`
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
