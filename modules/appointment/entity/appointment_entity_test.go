package entity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewAppointment_AllAttendeesPending(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	appt, err := NewAppointment(uuid.New(), "  Sprint planning ", nil, testNow.Add(24*time.Hour), 30, ids, testNow)
	if err != nil {
		t.Fatalf("NewAppointment() error = %v", err)
	}
	if appt.Title != "Sprint planning" {
		t.Errorf("Title = %q, want trimmed", appt.Title)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("Status = %q, want scheduled", appt.Status)
	}
	if len(appt.Attendees) != 3 {
		t.Fatalf("len(Attendees) = %d, want 3", len(appt.Attendees))
	}
	for i, at := range appt.Attendees {
		if at.UserID != ids[i] || at.Position != i {
			t.Errorf("attendee %d = %+v, want user %s at position %d", i, at, ids[i], i)
		}
		if at.Status != AttendeePending || at.RespondedAt != nil {
			t.Errorf("attendee %d should start pending without a response time", i)
		}
	}
}

func TestNewAppointment_Validation(t *testing.T) {
	long := strings.Repeat("x", 1001)
	future := testNow.Add(time.Hour)

	tests := []struct {
		name        string
		title       string
		description *string
		date        time.Time
		duration    int
		want        error
	}{
		{"short title", "abcd", nil, future, 30, ErrTitleLength},
		{"long title", strings.Repeat("t", 201), nil, future, 30, ErrTitleLength},
		{"long description", "Standup", &long, future, 30, ErrDescriptionLength},
		{"short duration", "Standup", nil, future, 14, ErrDurationTooShort},
		{"date equal to now", "Standup", nil, testNow, 30, ErrNotInFuture},
		{"date in past", "Standup", nil, testNow.Add(-time.Minute), 30, ErrNotInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAppointment(uuid.New(), tt.title, tt.description, tt.date, tt.duration, []uuid.UUID{uuid.New()}, testNow)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMergeAttendees_PreservesRetainedEntries(t *testing.T) {
	apptID := uuid.New()
	kept, dropped, added := uuid.New(), uuid.New(), uuid.New()
	respondedAt := testNow.Add(-time.Hour)
	notes := "see you there"

	existing := []Attendee{
		{AppointmentID: apptID, UserID: dropped, Position: 0, Status: AttendeePending},
		{AppointmentID: apptID, UserID: kept, Position: 1, Status: AttendeeAccepted, RespondedAt: &respondedAt, Notes: &notes},
	}

	merged := MergeAttendees(existing, apptID, []uuid.UUID{kept, added})

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].UserID != kept || merged[0].Status != AttendeeAccepted || merged[0].RespondedAt == nil || !merged[0].RespondedAt.Equal(respondedAt) {
		t.Errorf("retained entry changed: %+v", merged[0])
	}
	if merged[0].Position != 0 {
		t.Errorf("retained entry position = %d, want 0", merged[0].Position)
	}
	if merged[1].UserID != added || merged[1].Status != AttendeePending || merged[1].RespondedAt != nil {
		t.Errorf("new entry = %+v, want pending", merged[1])
	}
}

func TestAppointment_CountByStatus(t *testing.T) {
	a := &Appointment{Attendees: []Attendee{
		{Status: AttendeeAccepted}, {Status: AttendeeAccepted}, {Status: AttendeeDeclined},
	}}
	counts := a.CountByStatus()
	if counts[AttendeeAccepted] != 2 || counts[AttendeeDeclined] != 1 || counts[AttendeePending] != 0 {
		t.Errorf("CountByStatus() = %v", counts)
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []string{"scheduled", "completed", "cancelled"} {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) = %v", s, err)
		}
	}
	if err := ValidateStatus("postponed"); err != ErrInvalidStatus {
		t.Errorf("ValidateStatus(postponed) = %v, want ErrInvalidStatus", err)
	}
}
