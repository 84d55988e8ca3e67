package service

import (
	"context"
	"testing"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/report/entity"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

// =============================================================================
// Fakes
// =============================================================================

type recordingRepo struct {
	scopes   []entity.Scope
	year     int
	from, to time.Time
	since    time.Time
	status   string
	week     entity.Window
	month    entity.Window
	activity *entity.UserActivity
	err      error
}

func (r *recordingRepo) record(scope entity.Scope) {
	r.scopes = append(r.scopes, scope)
}

func (r *recordingRepo) MonthlyBuckets(_ context.Context, scope entity.Scope, year int) ([]entity.MonthBucket, error) {
	r.record(scope)
	r.year = year
	return []entity.MonthBucket{{Month: 6, Total: 12, Completed: 6}}, r.err
}

func (r *recordingRepo) RangeStats(_ context.Context, scope entity.Scope, from, to time.Time) (*entity.RangeStats, error) {
	r.record(scope)
	r.from, r.to = from, to
	return &entity.RangeStats{TotalAppointments: 2, AvgDuration: 37.56}, r.err
}

func (r *recordingRepo) DailyBuckets(_ context.Context, scope entity.Scope, _, _ time.Time) ([]entity.DayBucket, error) {
	r.record(scope)
	return []entity.DayBucket{{Day: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), Total: 2}}, r.err
}

func (r *recordingRepo) ScheduledStats(_ context.Context, scope entity.Scope, week, month entity.Window) (*entity.ScheduledStats, error) {
	r.record(scope)
	r.week, r.month = week, month
	return &entity.ScheduledStats{Count: 5, ThisWeek: 1, ThisMonth: 3, AvgDuration: 30}, r.err
}

func (r *recordingRepo) ScheduledByManager(_ context.Context, scope entity.Scope) ([]entity.ManagerCount, error) {
	r.record(scope)
	return []entity.ManagerCount{{ManagerID: uuid.New(), FirstName: "Mia", LastName: "Lead", Count: 5}}, r.err
}

func (r *recordingRepo) AttendedStats(_ context.Context, scope entity.Scope, since time.Time) (*entity.AttendedStats, error) {
	r.record(scope)
	r.since = since
	return &entity.AttendedStats{Count: 4, TotalDuration: 120, AvgDuration: 30, AcceptedRatio: 0.625}, r.err
}

func (r *recordingRepo) Details(_ context.Context, scope entity.Scope, status string, _ *time.Time) ([]entity.AppointmentDetail, error) {
	r.record(scope)
	r.status = status
	return []entity.AppointmentDetail{{ID: uuid.New(), Title: "Sprint review", Status: status}}, r.err
}

func (r *recordingRepo) UserActivity(_ context.Context, _ uuid.UUID, since time.Time) (*entity.UserActivity, error) {
	r.since = since
	if r.activity != nil {
		return r.activity, r.err
	}
	return &entity.UserActivity{}, r.err
}

func (r *recordingRepo) StatusSummary(_ context.Context, scope entity.Scope, week, month, _ entity.Window) (*entity.StatusSummary, error) {
	r.record(scope)
	r.week, r.month = week, month
	return &entity.StatusSummary{Total: 4, Completed: 1}, r.err
}

type memUsers map[uuid.UUID]*userEntity.User

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError) {
	return m[id], nil
}

// Wednesday.
var fixedNow = time.Date(2025, time.March, 12, 15, 30, 0, 0, time.UTC)

func newTestService(users memUsers) (*ReportService, *recordingRepo) {
	repo := &recordingRepo{}
	svc := NewReportService(repo, users)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func manager() *utils.TokenClaims {
	return &utils.TokenClaims{UserID: uuid.New(), Role: constants.RoleManager}
}

func developer() *utils.TokenClaims {
	return &utils.TokenClaims{UserID: uuid.New(), Role: constants.RoleDeveloper}
}

// =============================================================================
// Scope and periods
// =============================================================================

func TestReportService_ScopesByRole(t *testing.T) {
	svc, repo := newTestService(nil)

	if _, appErr := svc.StatusSummary(context.Background(), manager()); appErr != nil {
		t.Fatalf("StatusSummary() error = %v", appErr)
	}
	if repo.scopes[0].AttendeeID != nil {
		t.Errorf("manager scope = %v, want unrestricted", *repo.scopes[0].AttendeeID)
	}

	dev := developer()
	if _, appErr := svc.StatusSummary(context.Background(), dev); appErr != nil {
		t.Fatalf("StatusSummary() error = %v", appErr)
	}
	if got := repo.scopes[1].AttendeeID; got == nil || *got != dev.UserID {
		t.Errorf("developer scope = %v, want attendee %s", got, dev.UserID)
	}
}

func TestPeriods(t *testing.T) {
	week, month, lastMonth := periods(fixedNow)

	if want := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC); !week.From.Equal(want) {
		t.Errorf("week.From = %v, want %v", week.From, want)
	}
	if got := week.To.Sub(week.From); got != 7*24*time.Hour {
		t.Errorf("week length = %v", got)
	}
	if want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC); !month.From.Equal(want) {
		t.Errorf("month.From = %v, want %v", month.From, want)
	}
	if want := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC); !month.To.Equal(want) {
		t.Errorf("month.To = %v, want %v", month.To, want)
	}
	if want := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC); !lastMonth.From.Equal(want) || !lastMonth.To.Equal(month.From) {
		t.Errorf("lastMonth = %+v", lastMonth)
	}
}

// =============================================================================
// Operations
// =============================================================================

func TestReportService_Monthly_DefaultsToCurrentYear(t *testing.T) {
	svc, repo := newTestService(nil)

	res, appErr := svc.Monthly(context.Background(), manager(), 0)
	if appErr != nil {
		t.Fatalf("Monthly() error = %v", appErr)
	}
	if repo.year != 2025 || res.Year != 2025 {
		t.Errorf("year = %d / %d, want 2025", repo.year, res.Year)
	}
	if res.Summary.AveragePerMonth != 1 || res.MonthlyBreakdown[5].Total != 12 {
		t.Errorf("Monthly() = %+v", res.Summary)
	}

	if _, appErr := svc.Monthly(context.Background(), manager(), 2023); appErr != nil || repo.year != 2023 {
		t.Errorf("Monthly(2023) year = %d, err = %v", repo.year, appErr)
	}
}

func TestReportService_CustomRange_Validation(t *testing.T) {
	svc, _ := newTestService(nil)

	tests := []struct {
		name       string
		start, end string
		message    string
	}{
		{"missing start", "", "2025-02-01", "Start date and end date are required"},
		{"missing end", "2025-01-01", " ", "Start date and end date are required"},
		{"bad start", "yesterday", "2025-02-01", "Invalid start date format"},
		{"equal dates", "2025-01-01", "2025-01-01", "Start date must be before end date"},
		{"reversed", "2025-02-01", "2025-01-01", "Start date must be before end date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := svc.CustomRange(context.Background(), manager(), tt.start, tt.end)
			if appErr == nil || appErr.Code != errors.ErrInvalidInput || appErr.Message != tt.message {
				t.Errorf("CustomRange() error = %v, want %q", appErr, tt.message)
			}
		})
	}
}

func TestReportService_CustomRange(t *testing.T) {
	svc, repo := newTestService(nil)

	res, appErr := svc.CustomRange(context.Background(), developer(), "2025-02-01", "2025-02-10T12:00:00Z")
	if appErr != nil {
		t.Fatalf("CustomRange() error = %v", appErr)
	}
	if res.DateRange.TotalDays != 10 {
		t.Errorf("TotalDays = %d, want 10", res.DateRange.TotalDays)
	}
	if res.Statistics.AvgDuration != 37.6 {
		t.Errorf("AvgDuration = %v, want 37.6", res.Statistics.AvgDuration)
	}
	if len(res.DailyBreakdown) != 1 || res.DailyBreakdown[0].Date != "2025-02-03" {
		t.Errorf("DailyBreakdown = %+v", res.DailyBreakdown)
	}
	if !repo.from.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", repo.from)
	}
}

func TestReportService_Scheduled_Details(t *testing.T) {
	svc, repo := newTestService(nil)

	res, appErr := svc.Scheduled(context.Background(), manager(), false)
	if appErr != nil {
		t.Fatalf("Scheduled() error = %v", appErr)
	}
	if res.TotalScheduled != 5 || res.UpcomingThisWeek != 1 || res.UpcomingThisMonth != 3 {
		t.Errorf("Scheduled() = %+v", res)
	}
	if res.Details == nil || len(res.Details) != 0 {
		t.Errorf("Details = %v, want empty list", res.Details)
	}
	if len(res.ByManager) != 1 || res.ByManager[0].Name != "Mia Lead" {
		t.Errorf("ByManager = %+v", res.ByManager)
	}

	res, _ = svc.Scheduled(context.Background(), manager(), true)
	if len(res.Details) != 1 || repo.status != "scheduled" {
		t.Errorf("Details = %+v, status = %q", res.Details, repo.status)
	}
}

func TestReportService_Attended_Timeframes(t *testing.T) {
	svc, repo := newTestService(nil)

	tests := []struct {
		timeframe string
		want      string
		since     time.Time
	}{
		{"", "month", fixedNow.AddDate(0, -1, 0)},
		{"week", "week", fixedNow.AddDate(0, 0, -7)},
		{"Quarter", "quarter", fixedNow.AddDate(0, -3, 0)},
		{"year", "year", fixedNow.AddDate(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res, appErr := svc.Attended(context.Background(), developer(), tt.timeframe, false)
			if appErr != nil {
				t.Fatalf("Attended() error = %v", appErr)
			}
			if res.Timeframe != tt.want || !repo.since.Equal(tt.since) {
				t.Errorf("timeframe = %q since %v, want %q since %v", res.Timeframe, repo.since, tt.want, tt.since)
			}
			if res.AttendanceRate != 63 {
				t.Errorf("AttendanceRate = %d, want 63", res.AttendanceRate)
			}
		})
	}

	_, appErr := svc.Attended(context.Background(), developer(), "decade", false)
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Errorf("Attended(decade) error = %v, want invalid input", appErr)
	}
}

func TestReportService_UserActivity_Access(t *testing.T) {
	dev := developer()
	other := uuid.New()
	users := memUsers{
		dev.UserID: {FirstName: "Dana", LastName: "Dev", Email: "dana@example.com", Role: constants.RoleDeveloper},
		other:      {FirstName: "Otto", LastName: "Other", Email: "otto@example.com", Role: constants.RoleDeveloper},
	}
	users[dev.UserID].ID = dev.UserID
	users[other].ID = other

	svc, repo := newTestService(users)
	repo.activity = &entity.UserActivity{Assigned: 4, Accepted: 2, Declined: 1, Attended: 1, AttendedMinutes: 90}

	_, appErr := svc.UserActivity(context.Background(), dev, other.String(), "")
	if appErr == nil || appErr.Code != errors.ErrForbidden || appErr.Message != "You can only view your own activity report" {
		t.Fatalf("developer viewing other user: error = %v", appErr)
	}

	res, appErr := svc.UserActivity(context.Background(), dev, "", "week")
	if appErr != nil {
		t.Fatalf("UserActivity(self) error = %v", appErr)
	}
	if res.User.Name != "Dana Dev" || res.Timeframe != "week" {
		t.Errorf("UserActivity(self) = %+v", res)
	}
	if res.Activity.ResponseRate != 75 || res.Activity.AttendanceRate != 50 || res.Activity.TotalHoursInMeetings != 1.5 {
		t.Errorf("Activity = %+v", res.Activity)
	}

	res, appErr = svc.UserActivity(context.Background(), manager(), other.String(), "")
	if appErr != nil || res.User.ID != other {
		t.Errorf("manager viewing other user: %+v, %v", res, appErr)
	}

	_, appErr = svc.UserActivity(context.Background(), manager(), uuid.NewString(), "")
	if appErr == nil || appErr.Code != errors.ErrNotFound || appErr.Message != "User not found" {
		t.Errorf("unknown user: error = %v", appErr)
	}

	_, appErr = svc.UserActivity(context.Background(), manager(), "not-a-uuid", "")
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Errorf("invalid id: error = %v", appErr)
	}
}

func TestReportService_RepositoryFailure(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.err = context.DeadlineExceeded

	_, appErr := svc.StatusSummary(context.Background(), manager())
	if appErr == nil || appErr.Code != errors.ErrGetFailed {
		t.Fatalf("StatusSummary() error = %v, want get failed", appErr)
	}
	if appErr.Message != "Something went wrong while retrieving status summary" {
		t.Errorf("message = %q", appErr.Message)
	}
}
