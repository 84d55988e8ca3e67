package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/modules/report/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReportRepository struct {
	DB database.IDatabase
}

func NewReportRepository(db database.IDatabase) *ReportRepository {
	return &ReportRepository{DB: db}
}

type ReportRepositoryInterface interface {
	MonthlyBuckets(ctx context.Context, scope entity.Scope, year int) ([]entity.MonthBucket, error)
	RangeStats(ctx context.Context, scope entity.Scope, from, to time.Time) (*entity.RangeStats, error)
	DailyBuckets(ctx context.Context, scope entity.Scope, from, to time.Time) ([]entity.DayBucket, error)
	ScheduledStats(ctx context.Context, scope entity.Scope, week, month entity.Window) (*entity.ScheduledStats, error)
	ScheduledByManager(ctx context.Context, scope entity.Scope) ([]entity.ManagerCount, error)
	AttendedStats(ctx context.Context, scope entity.Scope, since time.Time) (*entity.AttendedStats, error)
	Details(ctx context.Context, scope entity.Scope, status string, since *time.Time) ([]entity.AppointmentDetail, error)
	UserActivity(ctx context.Context, userID uuid.UUID, since time.Time) (*entity.UserActivity, error)
	StatusSummary(ctx context.Context, scope entity.Scope, week, month, lastMonth entity.Window) (*entity.StatusSummary, error)
}

// predicate collects WHERE conditions over `appointments a` with `?` placeholders.
type predicate struct {
	conds []string
	args  []any
}

func newPredicate(scope entity.Scope) *predicate {
	p := &predicate{}
	if scope.AttendeeID != nil {
		p.add(`EXISTS (SELECT 1 FROM appointment_attendees sa WHERE sa.appointment_id = a.id AND sa.user_id = ?)`, *scope.AttendeeID)
	}
	return p
}

func (p *predicate) add(cond string, args ...any) *predicate {
	p.conds = append(p.conds, cond)
	p.args = append(p.args, args...)
	return p
}

// cte renders the `scoped` common table expression all aggregates read from.
func (p *predicate) cte() string {
	where := "TRUE"
	if len(p.conds) > 0 {
		where = strings.Join(p.conds, " AND ")
	}
	return fmt.Sprintf(`WITH scoped AS (
		SELECT a.id, a.manager_id, a.title, a.status, a.scheduled_date, a.duration, a.created_at
		FROM appointments a
		WHERE %s
	)`, where)
}

func (p *predicate) bind(extra ...any) []any {
	return append(append([]any{}, p.args...), extra...)
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

const statusCounts = `
		COUNT(*) FILTER (WHERE status = 'scheduled') AS scheduled,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled`

func (r *ReportRepository) MonthlyBuckets(ctx context.Context, scope entity.Scope, year int) ([]entity.MonthBucket, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	p := newPredicate(scope).add(`a.scheduled_date >= ? AND a.scheduled_date < ?`, from, from.AddDate(1, 0, 0))

	query := p.cte() + `
		SELECT EXTRACT(MONTH FROM scheduled_date AT TIME ZONE 'UTC')::int AS month,
		COUNT(*) AS total,` + statusCounts + `,
		COALESCE(SUM(duration), 0) AS total_duration
		FROM scoped
		GROUP BY 1
		ORDER BY 1
	`

	var buckets []entity.MonthBucket
	if err := r.DB.SelectContext(ctx, &buckets, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:MonthlyBuckets", "error", err)
		return nil, err
	}
	return buckets, nil
}

// RangeStats aggregates appointments scheduled within [from, to].
func (r *ReportRepository) RangeStats(ctx context.Context, scope entity.Scope, from, to time.Time) (*entity.RangeStats, error) {
	p := newPredicate(scope).add(`a.scheduled_date >= ? AND a.scheduled_date <= ?`, from, to)

	query := p.cte() + `
		SELECT COUNT(*) AS total_appointments,` + statusCounts + `,
		COALESCE(SUM(duration), 0) AS total_duration,
		COALESCE(AVG(duration), 0)::float8 AS avg_duration,
		(SELECT COUNT(*) FROM appointment_attendees aa JOIN scoped s ON s.id = aa.appointment_id) AS total_attendees
		FROM scoped
	`

	var stats entity.RangeStats
	if err := r.DB.GetContext(ctx, &stats, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:RangeStats", "error", err)
		return nil, err
	}
	return &stats, nil
}

func (r *ReportRepository) DailyBuckets(ctx context.Context, scope entity.Scope, from, to time.Time) ([]entity.DayBucket, error) {
	p := newPredicate(scope).add(`a.scheduled_date >= ? AND a.scheduled_date <= ?`, from, to)

	query := p.cte() + `
		SELECT date_trunc('day', scheduled_date AT TIME ZONE 'UTC') AS day,
		COUNT(*) AS total,` + statusCounts + `
		FROM scoped
		GROUP BY 1
		ORDER BY 1
	`

	var days []entity.DayBucket
	if err := r.DB.SelectContext(ctx, &days, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:DailyBuckets", "error", err)
		return nil, err
	}
	return days, nil
}

func (r *ReportRepository) ScheduledStats(ctx context.Context, scope entity.Scope, week, month entity.Window) (*entity.ScheduledStats, error) {
	p := newPredicate(scope).add(`a.status = 'scheduled'`)

	query := p.cte() + `
		SELECT COUNT(*) AS count,
		COALESCE(AVG(duration), 0)::float8 AS avg_duration,
		COUNT(*) FILTER (WHERE scheduled_date >= ? AND scheduled_date < ?) AS this_week,
		COUNT(*) FILTER (WHERE scheduled_date >= ? AND scheduled_date < ?) AS this_month
		FROM scoped
	`

	var stats entity.ScheduledStats
	args := p.bind(week.From, week.To, month.From, month.To)
	if err := r.DB.GetContext(ctx, &stats, rebind(query), args...); err != nil {
		logger.Error("ReportRepository:ScheduledStats", "error", err)
		return nil, err
	}
	return &stats, nil
}

func (r *ReportRepository) ScheduledByManager(ctx context.Context, scope entity.Scope) ([]entity.ManagerCount, error) {
	p := newPredicate(scope).add(`a.status = 'scheduled'`)

	query := p.cte() + `
		SELECT s.manager_id, u.first_name, u.last_name, COUNT(*) AS count
		FROM scoped s
		JOIN users u ON u.id = s.manager_id
		GROUP BY s.manager_id, u.first_name, u.last_name
		ORDER BY count DESC, u.first_name, u.last_name
	`

	var counts []entity.ManagerCount
	if err := r.DB.SelectContext(ctx, &counts, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:ScheduledByManager", "error", err)
		return nil, err
	}
	return counts, nil
}

// AttendedStats covers completed appointments scheduled since the given instant.
func (r *ReportRepository) AttendedStats(ctx context.Context, scope entity.Scope, since time.Time) (*entity.AttendedStats, error) {
	p := newPredicate(scope).add(`a.status = 'completed' AND a.scheduled_date >= ?`, since)

	query := p.cte() + `,
		per_appointment AS (
			SELECT s.id, s.duration,
			COUNT(aa.user_id) AS attendees,
			COUNT(aa.user_id) FILTER (WHERE aa.status = 'accepted') AS accepted
			FROM scoped s
			LEFT JOIN appointment_attendees aa ON aa.appointment_id = s.id
			GROUP BY s.id, s.duration
		)
		SELECT COUNT(*) AS count,
		COALESCE(SUM(duration), 0) AS total_duration,
		COALESCE(AVG(duration), 0)::float8 AS avg_duration,
		COALESCE(AVG(accepted::float8 / NULLIF(attendees, 0)), 0)::float8 AS accepted_ratio
		FROM per_appointment
	`

	var stats entity.AttendedStats
	if err := r.DB.GetContext(ctx, &stats, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:AttendedStats", "error", err)
		return nil, err
	}
	return &stats, nil
}

func (r *ReportRepository) Details(ctx context.Context, scope entity.Scope, status string, since *time.Time) ([]entity.AppointmentDetail, error) {
	p := newPredicate(scope).add(`a.status = ?`, status)
	if since != nil {
		p.add(`a.scheduled_date >= ?`, *since)
	}

	query := p.cte() + `
		SELECT s.id, s.title, s.status, s.scheduled_date, s.duration, s.manager_id,
		u.first_name AS manager_first_name, u.last_name AS manager_last_name,
		(SELECT COUNT(*) FROM appointment_attendees aa WHERE aa.appointment_id = s.id) AS attendee_count
		FROM scoped s
		JOIN users u ON u.id = s.manager_id
		ORDER BY s.scheduled_date ASC
	`

	var details []entity.AppointmentDetail
	if err := r.DB.SelectContext(ctx, &details, rebind(query), p.bind()...); err != nil {
		logger.Error("ReportRepository:Details", "error", err)
		return nil, err
	}
	return details, nil
}

// UserActivity counts appointments created by, and assigned to, userID since the given instant.
func (r *ReportRepository) UserActivity(ctx context.Context, userID uuid.UUID, since time.Time) (*entity.UserActivity, error) {
	query := `
		SELECT
		(SELECT COUNT(*) FROM appointments WHERE manager_id = $1 AND created_at >= $2) AS created,
		COUNT(*) AS assigned,
		COUNT(*) FILTER (WHERE aa.status = 'accepted') AS accepted,
		COUNT(*) FILTER (WHERE aa.status = 'declined') AS declined,
		COUNT(*) FILTER (WHERE aa.status = 'accepted' AND a.status = 'completed') AS attended,
		COALESCE(SUM(a.duration) FILTER (WHERE aa.status = 'accepted' AND a.status = 'completed'), 0) AS attended_minutes
		FROM appointment_attendees aa
		JOIN appointments a ON a.id = aa.appointment_id
		WHERE aa.user_id = $1 AND a.created_at >= $2
	`

	var activity entity.UserActivity
	if err := r.DB.GetContext(ctx, &activity, query, userID, since); err != nil {
		logger.Error("ReportRepository:UserActivity", "error", err)
		return nil, err
	}
	return &activity, nil
}

func (r *ReportRepository) StatusSummary(ctx context.Context, scope entity.Scope, week, month, lastMonth entity.Window) (*entity.StatusSummary, error) {
	p := newPredicate(scope)

	query := p.cte() + `,
		responses AS (
			SELECT aa.status, aa.responded_at, s.created_at
			FROM appointment_attendees aa
			JOIN scoped s ON s.id = aa.appointment_id
		)
		SELECT COUNT(*) AS total,` + statusCounts + `,
		COUNT(*) FILTER (WHERE scheduled_date >= ? AND scheduled_date < ?) AS this_week,
		COUNT(*) FILTER (WHERE scheduled_date >= ? AND scheduled_date < ?) AS this_month,
		COUNT(*) FILTER (WHERE scheduled_date >= ? AND scheduled_date < ?) AS last_month,
		(SELECT COUNT(*) FROM responses) AS total_attendees,
		(SELECT COUNT(*) FROM responses WHERE status = 'pending') AS pending_responses,
		(SELECT COUNT(*) FROM responses WHERE status = 'accepted') AS accepted_responses,
		(SELECT COUNT(*) FROM responses WHERE status = 'declined') AS declined_responses,
		(SELECT COALESCE(AVG(EXTRACT(EPOCH FROM responded_at - created_at)) / 3600, 0)
			FROM responses WHERE responded_at IS NOT NULL)::float8 AS avg_response_hours
		FROM scoped
	`

	var summary entity.StatusSummary
	args := p.bind(week.From, week.To, month.From, month.To, lastMonth.From, lastMonth.To)
	if err := r.DB.GetContext(ctx, &summary, rebind(query), args...); err != nil {
		logger.Error("ReportRepository:StatusSummary", "error", err)
		return nil, err
	}
	return &summary, nil
}
