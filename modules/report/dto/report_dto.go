package dto

import (
	"time"

	"github.com/google/uuid"
)

// ===== Monthly =====

type MonthStats struct {
	Month         string `json:"month"`
	MonthNumber   int    `json:"monthNumber"`
	Total         int    `json:"total"`
	Scheduled     int    `json:"scheduled"`
	Completed     int    `json:"completed"`
	Cancelled     int    `json:"cancelled"`
	TotalDuration int    `json:"totalDuration"`
}

type MonthlySummary struct {
	TotalAppointments int `json:"totalAppointments"`
	TotalCompleted    int `json:"totalCompleted"`
	TotalCancelled    int `json:"totalCancelled"`
	AveragePerMonth   int `json:"averagePerMonth"`
}

type MonthlyReportResponse struct {
	Year             int            `json:"year"`
	MonthlyBreakdown []MonthStats   `json:"monthlyBreakdown"`
	Summary          MonthlySummary `json:"summary"`
}

// ===== Custom range =====

type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	TotalDays int       `json:"totalDays"`
}

type RangeStatistics struct {
	TotalAppointments int     `json:"totalAppointments"`
	Scheduled         int     `json:"scheduled"`
	Completed         int     `json:"completed"`
	Cancelled         int     `json:"cancelled"`
	TotalDuration     int     `json:"totalDuration"`
	AvgDuration       float64 `json:"avgDuration"`
	TotalAttendees    int     `json:"totalAttendees"`
}

type DayStats struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Scheduled int    `json:"scheduled"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

type CustomRangeReportResponse struct {
	DateRange      DateRange       `json:"dateRange"`
	Statistics     RangeStatistics `json:"statistics"`
	DailyBreakdown []DayStats      `json:"dailyBreakdown"`
}

// ===== Scheduled / attended =====

type ManagerCount struct {
	ManagerID uuid.UUID `json:"managerId"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
}

type AppointmentDetail struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Duration      int       `json:"duration"`
	ManagerID     uuid.UUID `json:"managerId"`
	ManagerName   string    `json:"managerName"`
	AttendeeCount int       `json:"attendeeCount"`
}

type ScheduledReportResponse struct {
	TotalScheduled    int                 `json:"totalScheduled"`
	UpcomingThisWeek  int                 `json:"upcomingThisWeek"`
	UpcomingThisMonth int                 `json:"upcomingThisMonth"`
	ByManager         []ManagerCount      `json:"byManager"`
	AverageDuration   float64             `json:"averageDuration"`
	Details           []AppointmentDetail `json:"details"`
}

type AttendedReportResponse struct {
	Timeframe       string              `json:"timeframe"`
	TotalAttended   int                 `json:"totalAttended"`
	AttendanceRate  int                 `json:"attendanceRate"`
	TotalDuration   int                 `json:"totalDuration"`
	AverageDuration float64             `json:"averageDuration"`
	Details         []AppointmentDetail `json:"details"`
}

// ===== User activity =====

type ActivityUser struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department *string   `json:"department,omitempty"`
}

type Activity struct {
	AppointmentsCreated  int     `json:"appointmentsCreated"`
	AppointmentsAssigned int     `json:"appointmentsAssigned"`
	AppointmentsAccepted int     `json:"appointmentsAccepted"`
	AppointmentsDeclined int     `json:"appointmentsDeclined"`
	AppointmentsAttended int     `json:"appointmentsAttended"`
	ResponseRate         int     `json:"responseRate"`
	AttendanceRate       int     `json:"attendanceRate"`
	TotalHoursInMeetings float64 `json:"totalHoursInMeetings"`
}

type UserActivityReportResponse struct {
	User      ActivityUser `json:"user"`
	Timeframe string       `json:"timeframe"`
	Activity  Activity     `json:"activity"`
}

// ===== Status summary =====

type StatusOverview struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type AttendeeResponses struct {
	TotalPending  int `json:"totalPending"`
	TotalAccepted int `json:"totalAccepted"`
	TotalDeclined int `json:"totalDeclined"`
	ResponseRate  int `json:"responseRate"`
}

type StatusTrends struct {
	ThisWeek  int `json:"thisWeek"`
	ThisMonth int `json:"thisMonth"`
	LastMonth int `json:"lastMonth"`
}

type HealthMetrics struct {
	CancellationRate int `json:"cancellationRate"`
	CompletionRate   int `json:"completionRate"`
	// AverageResponseTime is in hours, from appointment creation to the attendee's response.
	AverageResponseTime float64 `json:"averageResponseTime"`
}

type StatusSummaryReportResponse struct {
	Overview          StatusOverview    `json:"overview"`
	AttendeeResponses AttendeeResponses `json:"attendeeResponses"`
	Trends            StatusTrends      `json:"trends"`
	HealthMetrics     HealthMetrics     `json:"healthMetrics"`
}
