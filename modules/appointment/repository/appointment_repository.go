package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/appointment/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const appointmentColumns = `a.id, a.title, a.description, a.manager_id, a.scheduled_date, a.duration, a.status, a.created_at, a.updated_at`

type AppointmentRepository struct {
	DB database.IDatabase
}

func NewAppointmentRepository(db database.IDatabase) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

type AppointmentRepositoryInterface interface {
	Create(ctx context.Context, appt *entity.Appointment) (*entity.Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Update(ctx context.Context, appt *entity.Appointment, replaceAttendees bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateAttendeeStatus(ctx context.Context, appointmentID, userID uuid.UUID, status entity.AttendeeStatus, respondedAt time.Time, notes *string) (bool, error)
	List(ctx context.Context, filter Filter, params params.QueryParams) (*entity.PaginatedAppointmentEntity, error)
	ListAll(ctx context.Context, filter Filter) ([]entity.Appointment, error)
	Summary(ctx context.Context, filter Filter) (*entity.Summary, error)
}

// ===================== Appointment CRUD =====================

// Create inserts the appointment and its attendee entries in one transaction.
func (r *AppointmentRepository) Create(ctx context.Context, appt *entity.Appointment) (*entity.Appointment, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("AppointmentRepository:Create:Begin", "error", err)
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO appointments (title, description, manager_id, scheduled_date, duration, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, manager_id, scheduled_date, duration, status, created_at, updated_at
	`

	var created entity.Appointment
	if err := tx.GetContext(ctx, &created, query,
		appt.Title, appt.Description, appt.ManagerID, appt.ScheduledDate, appt.Duration, appt.Status); err != nil {
		logger.Error("AppointmentRepository:Create:Insert", "error", err)
		return nil, err
	}

	attendees, err := upsertAttendees(ctx, tx, created.ID, appt.Attendees)
	if err != nil {
		logger.Error("AppointmentRepository:Create:Attendees", "error", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("AppointmentRepository:Create:Commit", "error", err)
		return nil, err
	}

	created.Attendees = attendees
	return &created, nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`

	var appt entity.Appointment
	if err := r.DB.GetContext(ctx, &appt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("AppointmentRepository:FindByID", "error", err)
		return nil, err
	}

	byAppointment, err := r.attendeesFor(ctx, []uuid.UUID{appt.ID})
	if err != nil {
		return nil, err
	}
	appt.Attendees = byAppointment[appt.ID]
	return &appt, nil
}

// Update writes the appointment fields. With replaceAttendees the attendee set becomes
// appt.Attendees: entries of users no longer listed are dropped, retained entries keep their
// response and only move position, new users are inserted as given. Both happen in one transaction.
func (r *AppointmentRepository) Update(ctx context.Context, appt *entity.Appointment, replaceAttendees bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("AppointmentRepository:Update:Begin", "error", err)
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE appointments
		SET title = $2, description = $3, scheduled_date = $4, duration = $5, status = $6, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		appt.ID, appt.Title, appt.Description, appt.ScheduledDate, appt.Duration, appt.Status); err != nil {
		logger.Error("AppointmentRepository:Update", "error", err)
		return err
	}

	if replaceAttendees {
		userIDs := make([]string, len(appt.Attendees))
		for i, at := range appt.Attendees {
			userIDs[i] = at.UserID.String()
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM appointment_attendees WHERE appointment_id = $1 AND user_id <> ALL($2::uuid[])`,
			appt.ID, pq.Array(userIDs)); err != nil {
			logger.Error("AppointmentRepository:Update:RemoveAttendees", "error", err)
			return err
		}
		if _, err := upsertAttendees(ctx, tx, appt.ID, appt.Attendees); err != nil {
			logger.Error("AppointmentRepository:Update:UpsertAttendees", "error", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("AppointmentRepository:Update:Commit", "error", err)
		return err
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		logger.Error("AppointmentRepository:Delete", "error", err)
		return err
	}
	return nil
}

// ===================== Attendees =====================

// UpdateAttendeeStatus touches only the (appointment, user) row. Notes are kept when nil.
func (r *AppointmentRepository) UpdateAttendeeStatus(ctx context.Context, appointmentID, userID uuid.UUID, status entity.AttendeeStatus, respondedAt time.Time, notes *string) (bool, error) {
	query := `
		UPDATE appointment_attendees
		SET status = $3, responded_at = $4, notes = COALESCE($5, notes)
		WHERE appointment_id = $1 AND user_id = $2
	`
	res, err := r.DB.SQLx().ExecContext(ctx, query, appointmentID, userID, status, respondedAt, notes)
	if err != nil {
		logger.Error("AppointmentRepository:UpdateAttendeeStatus", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// upsertAttendees inserts entries, and for users already present only updates position.
func upsertAttendees(ctx context.Context, tx *sqlx.Tx, appointmentID uuid.UUID, attendees []entity.Attendee) ([]entity.Attendee, error) {
	query := `
		INSERT INTO appointment_attendees (appointment_id, user_id, position, status, responded_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (appointment_id, user_id) DO UPDATE SET position = EXCLUDED.position
		RETURNING appointment_id, user_id, position, status, responded_at, notes, created_at
	`

	saved := make([]entity.Attendee, 0, len(attendees))
	for i, at := range attendees {
		status := at.Status
		if status == "" {
			status = entity.AttendeePending
		}
		var row entity.Attendee
		if err := tx.GetContext(ctx, &row, query, appointmentID, at.UserID, i, status, at.RespondedAt, at.Notes); err != nil {
			return nil, err
		}
		saved = append(saved, row)
	}
	return saved, nil
}

// attendeesFor loads attendee entries for the given appointments, ordered by position.
func (r *AppointmentRepository) attendeesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Attendee, error) {
	result := make(map[uuid.UUID][]entity.Attendee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT appointment_id, user_id, position, status, responded_at, notes, created_at
		FROM appointment_attendees
		WHERE appointment_id IN (?)
		ORDER BY appointment_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.SQLx().Rebind(query)

	var rows []entity.Attendee
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Error("AppointmentRepository:AttendeesFor", "error", err)
		return nil, err
	}
	for _, row := range rows {
		result[row.AppointmentID] = append(result[row.AppointmentID], row)
	}
	return result, nil
}

func (r *AppointmentRepository) withAttendees(ctx context.Context, items []entity.Appointment) error {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	byAppointment, err := r.attendeesFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Attendees = byAppointment[items[i].ID]
	}
	return nil
}

// ===================== Queries =====================

// List returns one page matching filter, newest scheduled date first.
func (r *AppointmentRepository) List(ctx context.Context, filter Filter, params params.QueryParams) (*entity.PaginatedAppointmentEntity, error) {
	whereClause, args := filter.Build()

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM appointments a`+whereClause, args...); err != nil {
		logger.Error("AppointmentRepository:List:Count", "error", err)
		return nil, err
	}

	n := len(args)
	query := `SELECT ` + appointmentColumns + ` FROM appointments a` + whereClause +
		` ORDER BY a.scheduled_date DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	items := []entity.Appointment{}
	if err := r.DB.SelectContext(ctx, &items, query, append(args, params.PageSize, params.Offset())...); err != nil {
		logger.Error("AppointmentRepository:List:Select", "error", err)
		return nil, err
	}
	if err := r.withAttendees(ctx, items); err != nil {
		return nil, err
	}

	return &entity.PaginatedAppointmentEntity{
		Items:      items,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

// ListAll returns every match without paging, for export.
func (r *AppointmentRepository) ListAll(ctx context.Context, filter Filter) ([]entity.Appointment, error) {
	whereClause, args := filter.Build()
	query := `SELECT ` + appointmentColumns + ` FROM appointments a` + whereClause + ` ORDER BY a.scheduled_date DESC`

	items := []entity.Appointment{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		logger.Error("AppointmentRepository:ListAll", "error", err)
		return nil, err
	}
	if err := r.withAttendees(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// Summary returns the status breakdown and average duration over filter.
func (r *AppointmentRepository) Summary(ctx context.Context, filter Filter) (*entity.Summary, error) {
	whereClause, args := filter.Build()

	var counts []statusCount
	if err := r.DB.SelectContext(ctx, &counts,
		`SELECT a.status, COUNT(*) AS count FROM appointments a`+whereClause+` GROUP BY a.status`, args...); err != nil {
		logger.Error("AppointmentRepository:Summary:Breakdown", "error", err)
		return nil, err
	}

	var avg sql.NullFloat64
	if err := r.DB.GetContext(ctx, &avg,
		`SELECT AVG(a.duration)::float8 FROM appointments a`+whereClause, args...); err != nil {
		logger.Error("AppointmentRepository:Summary:AvgDuration", "error", err)
		return nil, err
	}

	summary := &entity.Summary{StatusBreakdown: make(map[string]int, len(counts)), AvgDuration: avg.Float64}
	for _, c := range counts {
		summary.StatusBreakdown[c.Status] = c.Count
		summary.Total += c.Count
	}
	return summary, nil
}
