package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"appointment-scheduler/core/constants"
	coreController "appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/report/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubReportService struct {
	year           int
	start, end     string
	includeDetails bool
	userID         string
	timeframe      string
	activityErr    *errors.AppError
}

func (s *stubReportService) Monthly(_ context.Context, _ *utils.TokenClaims, year int) (*dto.MonthlyReportResponse, *errors.AppError) {
	s.year = year
	return &dto.MonthlyReportResponse{Year: year}, nil
}

func (s *stubReportService) CustomRange(_ context.Context, _ *utils.TokenClaims, start, end string) (*dto.CustomRangeReportResponse, *errors.AppError) {
	s.start, s.end = start, end
	return &dto.CustomRangeReportResponse{}, nil
}

func (s *stubReportService) Scheduled(_ context.Context, _ *utils.TokenClaims, includeDetails bool) (*dto.ScheduledReportResponse, *errors.AppError) {
	s.includeDetails = includeDetails
	return &dto.ScheduledReportResponse{TotalScheduled: 3}, nil
}

func (s *stubReportService) Attended(_ context.Context, _ *utils.TokenClaims, timeframe string, includeDetails bool) (*dto.AttendedReportResponse, *errors.AppError) {
	s.timeframe, s.includeDetails = timeframe, includeDetails
	return &dto.AttendedReportResponse{Timeframe: timeframe}, nil
}

func (s *stubReportService) UserActivity(_ context.Context, _ *utils.TokenClaims, userID, timeframe string) (*dto.UserActivityReportResponse, *errors.AppError) {
	s.userID, s.timeframe = userID, timeframe
	if s.activityErr != nil {
		return nil, s.activityErr
	}
	return &dto.UserActivityReportResponse{Timeframe: timeframe}, nil
}

func (s *stubReportService) StatusSummary(_ context.Context, _ *utils.TokenClaims) (*dto.StatusSummaryReportResponse, *errors.AppError) {
	return &dto.StatusSummaryReportResponse{}, nil
}

func newTestEcho(svc *stubReportService, claims *utils.TokenClaims) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = coreController.HTTPErrorHandler

	authenticated := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims != nil {
				c.Set(constants.ContextTokenData, claims)
			}
			return next(c)
		}
	}

	ctrl := NewReportController(svc)
	g := e.Group("/reports", authenticated)
	g.GET("/meetings/monthly", ctrl.GetMonthlyMeetingStats)
	g.GET("/meetings/custom", ctrl.GetCustomDateRangeReport)
	g.GET("/meetings/scheduled", ctrl.GetScheduledMeetingsCount)
	g.GET("/meetings/attended", ctrl.GetAttendedMeetingsCount)
	g.GET("/users/activity", ctrl.GetUserActivityReport)
	return e
}

func serve(e *echo.Echo, target string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestReportController_RequiresClaims(t *testing.T) {
	e := newTestEcho(&stubReportService{}, nil)

	rec, body := serve(e, "/reports/meetings/monthly")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["message"] != "User not authenticated" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestReportController_PassesQuery(t *testing.T) {
	svc := &stubReportService{}
	e := newTestEcho(svc, &utils.TokenClaims{UserID: uuid.New(), Role: constants.RoleManager})

	tests := []struct {
		name   string
		target string
		check  func(t *testing.T)
	}{
		{
			name:   "monthly year",
			target: "/reports/meetings/monthly?year=2024",
			check: func(t *testing.T) {
				if svc.year != 2024 {
					t.Errorf("year = %d, want 2024", svc.year)
				}
			},
		},
		{
			name:   "monthly bad year falls back",
			target: "/reports/meetings/monthly?year=abc",
			check: func(t *testing.T) {
				if svc.year != 0 {
					t.Errorf("year = %d, want 0", svc.year)
				}
			},
		},
		{
			name:   "custom range",
			target: "/reports/meetings/custom?startDate=2025-01-01&endDate=2025-02-01",
			check: func(t *testing.T) {
				if svc.start != "2025-01-01" || svc.end != "2025-02-01" {
					t.Errorf("range = %q..%q", svc.start, svc.end)
				}
			},
		},
		{
			name:   "scheduled details",
			target: "/reports/meetings/scheduled?includeDetails=true",
			check: func(t *testing.T) {
				if !svc.includeDetails {
					t.Error("includeDetails = false, want true")
				}
			},
		},
		{
			name:   "attended timeframe",
			target: "/reports/meetings/attended?timeframe=quarter",
			check: func(t *testing.T) {
				if svc.timeframe != "quarter" || svc.includeDetails {
					t.Errorf("timeframe = %q includeDetails = %v", svc.timeframe, svc.includeDetails)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(e, tt.target)
			if rec.Code != http.StatusOK || body["success"] != true {
				t.Fatalf("status = %d body = %v", rec.Code, body)
			}
			tt.check(t)
		})
	}
}

func TestReportController_UserActivityForbidden(t *testing.T) {
	other := uuid.NewString()
	svc := &stubReportService{
		activityErr: errors.NewAppError(errors.ErrForbidden, "You can only view your own activity report", nil),
	}
	e := newTestEcho(svc, &utils.TokenClaims{UserID: uuid.New(), Role: constants.RoleDeveloper})

	rec, body := serve(e, "/reports/users/activity?userId="+other+"&timeframe=week")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body["message"] != "You can only view your own activity report" || body["success"] != false {
		t.Errorf("body = %v", body)
	}
	if svc.userID != other || svc.timeframe != "week" {
		t.Errorf("service got userID=%q timeframe=%q", svc.userID, svc.timeframe)
	}
}
