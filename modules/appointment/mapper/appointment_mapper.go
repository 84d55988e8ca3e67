package mapper

import (
	"appointment-scheduler/modules/appointment/dto"
	"appointment-scheduler/modules/appointment/entity"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

// UserIndex resolves user ids to users for rendering.
type UserIndex map[uuid.UUID]*userEntity.User

func (idx UserIndex) Summary(id uuid.UUID) userDto.UserSummary {
	u, ok := idx[id]
	if !ok || u == nil {
		return userDto.UserSummary{ID: id}
	}
	return userDto.UserSummary{ID: u.ID, Name: u.FullName(), Email: u.Email, Role: u.Role}
}

// UserIDs collects manager and attendee ids across appointments without duplicates.
func UserIDs(items ...entity.Appointment) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(items)*2)
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, a := range items {
		add(a.ManagerID)
		for _, at := range a.Attendees {
			add(at.UserID)
		}
	}
	return ids
}

func ToAttendeeResponses(attendees []entity.Attendee, users UserIndex) []dto.AttendeeResponse {
	out := make([]dto.AttendeeResponse, 0, len(attendees))
	for _, at := range attendees {
		out = append(out, dto.AttendeeResponse{
			User:        users.Summary(at.UserID),
			Status:      string(at.Status),
			RespondedAt: at.RespondedAt,
			Notes:       at.Notes,
		})
	}
	return out
}

func ToAppointmentResponse(a *entity.Appointment, users UserIndex) *dto.AppointmentResponse {
	return &dto.AppointmentResponse{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Manager:       users.Summary(a.ManagerID),
		Attendees:     ToAttendeeResponses(a.Attendees, users),
		ScheduledDate: a.ScheduledDate,
		Duration:      a.Duration,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func ToAppointmentResponses(items []entity.Appointment, users UserIndex) []dto.AppointmentResponse {
	out := make([]dto.AppointmentResponse, 0, len(items))
	for i := range items {
		out = append(out, *ToAppointmentResponse(&items[i], users))
	}
	return out
}

func ToStatusSummaryResponse(a *entity.Appointment, users UserIndex) *dto.StatusSummaryResponse {
	counts := a.CountByStatus()
	manager := users.Summary(a.ManagerID)
	manager.Role = ""

	attendees := ToAttendeeResponses(a.Attendees, users)
	for i := range attendees {
		attendees[i].User.Role = ""
	}

	return &dto.StatusSummaryResponse{
		AppointmentID: a.ID,
		Title:         a.Title,
		Status:        string(a.Status),
		ScheduledDate: a.ScheduledDate,
		Manager:       manager,
		Attendees:     attendees,
		Summary: dto.ResponseCounts{
			TotalAttendees: len(a.Attendees),
			Accepted:       counts[entity.AttendeeAccepted],
			Declined:       counts[entity.AttendeeDeclined],
			Pending:        counts[entity.AttendeePending],
		},
	}
}
