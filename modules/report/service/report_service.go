package service

import (
	"context"
	"strings"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/report/dto"
	"appointment-scheduler/modules/report/entity"
	"appointment-scheduler/modules/report/mapper"
	"appointment-scheduler/modules/report/repository"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError)
}

type ReportServiceInterface interface {
	Monthly(ctx context.Context, actor *utils.TokenClaims, year int) (*dto.MonthlyReportResponse, *errors.AppError)
	CustomRange(ctx context.Context, actor *utils.TokenClaims, startDate, endDate string) (*dto.CustomRangeReportResponse, *errors.AppError)
	Scheduled(ctx context.Context, actor *utils.TokenClaims, includeDetails bool) (*dto.ScheduledReportResponse, *errors.AppError)
	Attended(ctx context.Context, actor *utils.TokenClaims, timeframe string, includeDetails bool) (*dto.AttendedReportResponse, *errors.AppError)
	UserActivity(ctx context.Context, actor *utils.TokenClaims, userID, timeframe string) (*dto.UserActivityReportResponse, *errors.AppError)
	StatusSummary(ctx context.Context, actor *utils.TokenClaims) (*dto.StatusSummaryReportResponse, *errors.AppError)
}

type ReportService struct {
	repo  repository.ReportRepositoryInterface
	users UserLookup
	now   func() time.Time
}

func NewReportService(repo repository.ReportRepositoryInterface, users UserLookup) *ReportService {
	return &ReportService{repo: repo, users: users, now: time.Now}
}

// scopeFor limits non-managers to appointments they attend.
func scopeFor(actor *utils.TokenClaims) entity.Scope {
	if actor.IsManager() {
		return entity.Scope{}
	}
	return entity.AttendeeScope(actor.UserID)
}

// periods returns the current week (from Sunday), the current month and the previous month, in UTC.
func periods(now time.Time) (week, month, lastMonth entity.Window) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	week = entity.Window{From: weekStart, To: weekStart.AddDate(0, 0, 7)}
	month = entity.Window{From: monthStart, To: monthStart.AddDate(0, 1, 0)}
	lastMonth = entity.Window{From: monthStart.AddDate(0, -1, 0), To: monthStart}
	return week, month, lastMonth
}

// timeframeStart resolves a lookback keyword into its starting instant.
func timeframeStart(timeframe string, now time.Time) (string, time.Time, *errors.AppError) {
	timeframe = strings.ToLower(strings.TrimSpace(timeframe))
	if timeframe == "" {
		timeframe = constants.DefaultReportTimeframe
	}
	switch timeframe {
	case "week":
		return timeframe, now.AddDate(0, 0, -7), nil
	case "month":
		return timeframe, now.AddDate(0, -1, 0), nil
	case "quarter":
		return timeframe, now.AddDate(0, -3, 0), nil
	case "year":
		return timeframe, now.AddDate(-1, 0, 0), nil
	}
	return "", time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid timeframe. Supported: week, month, quarter, year", nil)
}

func (s *ReportService) Monthly(ctx context.Context, actor *utils.TokenClaims, year int) (*dto.MonthlyReportResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	if year <= 0 {
		year = s.now().UTC().Year()
	}

	buckets, err := s.repo.MonthlyBuckets(ctx, scopeFor(actor), year)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving monthly statistics", err)
	}
	return mapper.ToMonthlyReport(year, buckets), nil
}

func (s *ReportService) CustomRange(ctx context.Context, actor *utils.TokenClaims, startDate, endDate string) (*dto.CustomRangeReportResponse, *errors.AppError) {
	if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start date and end date are required", nil)
	}
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid start date format", nil)
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid end date format", nil)
	}
	if !start.Before(end) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start date must be before end date", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	const failed = "Something went wrong while generating custom report"
	scope := scopeFor(actor)

	stats, err := s.repo.RangeStats(ctx, scope, start, end)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	days, err := s.repo.DailyBuckets(ctx, scope, start, end)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}

	return &dto.CustomRangeReportResponse{
		DateRange: dto.DateRange{
			StartDate: start,
			EndDate:   end,
			TotalDays: mapper.TotalDays(start, end),
		},
		Statistics:     mapper.ToRangeStatistics(stats),
		DailyBreakdown: mapper.ToDayStats(days),
	}, nil
}

func (s *ReportService) Scheduled(ctx context.Context, actor *utils.TokenClaims, includeDetails bool) (*dto.ScheduledReportResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	const failed = "Something went wrong while retrieving scheduled meetings"
	scope := scopeFor(actor)
	week, month, _ := periods(s.now())

	stats, err := s.repo.ScheduledStats(ctx, scope, week, month)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	byManager, err := s.repo.ScheduledByManager(ctx, scope)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}

	res := &dto.ScheduledReportResponse{
		TotalScheduled:    stats.Count,
		UpcomingThisWeek:  stats.ThisWeek,
		UpcomingThisMonth: stats.ThisMonth,
		ByManager:         mapper.ToManagerCounts(byManager),
		AverageDuration:   utils.RoundTo(stats.AvgDuration, 1),
		Details:           []dto.AppointmentDetail{},
	}
	if includeDetails {
		details, err := s.repo.Details(ctx, scope, "scheduled", nil)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
		}
		res.Details = mapper.ToDetails(details)
	}
	return res, nil
}

func (s *ReportService) Attended(ctx context.Context, actor *utils.TokenClaims, timeframe string, includeDetails bool) (*dto.AttendedReportResponse, *errors.AppError) {
	timeframe, since, appErr := timeframeStart(timeframe, s.now())
	if appErr != nil {
		return nil, appErr
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	const failed = "Something went wrong while retrieving attended meetings"
	scope := scopeFor(actor)

	stats, err := s.repo.AttendedStats(ctx, scope, since)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}

	res := &dto.AttendedReportResponse{
		Timeframe:       timeframe,
		TotalAttended:   stats.Count,
		AttendanceRate:  utils.Percent(stats.AcceptedRatio, 1),
		TotalDuration:   stats.TotalDuration,
		AverageDuration: utils.RoundTo(stats.AvgDuration, 1),
		Details:         []dto.AppointmentDetail{},
	}
	if includeDetails {
		details, err := s.repo.Details(ctx, scope, "completed", &since)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
		}
		res.Details = mapper.ToDetails(details)
	}
	return res, nil
}

// UserActivity reports on userID, or on the actor when userID is empty. Only managers may look at others.
func (s *ReportService) UserActivity(ctx context.Context, actor *utils.TokenClaims, userID, timeframe string) (*dto.UserActivityReportResponse, *errors.AppError) {
	target := actor.UserID
	if raw := strings.TrimSpace(userID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user id", nil)
		}
		target = id
	}
	if target != actor.UserID && !actor.IsManager() {
		return nil, errors.NewAppError(errors.ErrForbidden, "You can only view your own activity report", nil)
	}

	timeframe, since, appErr := timeframeStart(timeframe, s.now())
	if appErr != nil {
		return nil, appErr
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	user, appErr := s.users.GetByID(ctx, target)
	if appErr != nil {
		return nil, appErr
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	activity, err := s.repo.UserActivity(ctx, target, since)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving user activity", err)
	}

	logger.Info("ReportService:UserActivity", "actor_id", actor.UserID.String(), "user_id", target.String(), "timeframe", timeframe)
	return &dto.UserActivityReportResponse{
		User:      mapper.ToActivityUser(user),
		Timeframe: timeframe,
		Activity:  mapper.ToActivity(activity),
	}, nil
}

func (s *ReportService) StatusSummary(ctx context.Context, actor *utils.TokenClaims) (*dto.StatusSummaryReportResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	week, month, lastMonth := periods(s.now())
	summary, err := s.repo.StatusSummary(ctx, scopeFor(actor), week, month, lastMonth)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving status summary", err)
	}
	return mapper.ToStatusSummary(summary), nil
}
