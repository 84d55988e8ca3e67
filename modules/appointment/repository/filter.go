package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Scope limits a query to appointments related to Filter.UserID.
type Scope int

const (
	// ScopeInvolved matches appointments the user manages or attends.
	ScopeInvolved Scope = iota
	ScopeCreated
	ScopeAssigned
	// ScopeAll applies no visibility clause.
	ScopeAll
)

type Filter struct {
	UserID uuid.UUID
	Scope  Scope

	StartDate   *time.Time
	EndDate     *time.Time
	Statuses    []string
	MinDuration *int
	MaxDuration *int
	ManagerID   *uuid.UUID
	// AttendeeStatus matches when any attendee has this status.
	AttendeeStatus string
	// ResponseStatus matches on UserID's own attendee entry. Only used with ScopeAssigned.
	ResponseStatus string
}

// where accumulates predicates with sequential postgres placeholders.
type where struct {
	clauses []string
	args    []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Build renders the WHERE clause for the appointments table aliased as a, and its arguments.
func (f Filter) Build() (string, []any) {
	w := &where{}

	switch f.Scope {
	case ScopeCreated:
		w.add("a.manager_id = " + w.arg(f.UserID))
	case ScopeAssigned:
		clause := "EXISTS (SELECT 1 FROM appointment_attendees aa WHERE aa.appointment_id = a.id AND aa.user_id = " + w.arg(f.UserID)
		if f.ResponseStatus != "" {
			clause += " AND aa.status = " + w.arg(f.ResponseStatus)
		}
		w.add(clause + ")")
	case ScopeInvolved:
		p := w.arg(f.UserID)
		w.add("(a.manager_id = " + p + " OR EXISTS (SELECT 1 FROM appointment_attendees aa WHERE aa.appointment_id = a.id AND aa.user_id = " + p + "))")
	}

	if f.StartDate != nil {
		w.add("a.scheduled_date >= " + w.arg(*f.StartDate))
	}
	if f.EndDate != nil {
		w.add("a.scheduled_date <= " + w.arg(*f.EndDate))
	}
	if len(f.Statuses) == 1 {
		w.add("a.status = " + w.arg(f.Statuses[0]))
	} else if len(f.Statuses) > 1 {
		w.add("a.status = ANY(" + w.arg(pq.Array(f.Statuses)) + ")")
	}
	if f.MinDuration != nil {
		w.add("a.duration >= " + w.arg(*f.MinDuration))
	}
	if f.MaxDuration != nil {
		w.add("a.duration <= " + w.arg(*f.MaxDuration))
	}
	if f.ManagerID != nil {
		w.add("a.manager_id = " + w.arg(*f.ManagerID))
	}
	if f.AttendeeStatus != "" {
		w.add("EXISTS (SELECT 1 FROM appointment_attendees ab WHERE ab.appointment_id = a.id AND ab.status = " + w.arg(f.AttendeeStatus) + ")")
	}

	return w.String(), w.args
}
