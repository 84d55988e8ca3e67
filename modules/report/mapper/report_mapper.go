package mapper

import (
	"math"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/report/dto"
	"appointment-scheduler/modules/report/entity"
	userEntity "appointment-scheduler/modules/user/entity"
)

// ToMonthlyReport expands the sparse month buckets into all twelve months of year.
func ToMonthlyReport(year int, buckets []entity.MonthBucket) *dto.MonthlyReportResponse {
	byMonth := make(map[int]entity.MonthBucket, len(buckets))
	for _, b := range buckets {
		byMonth[b.Month] = b
	}

	report := &dto.MonthlyReportResponse{
		Year:             year,
		MonthlyBreakdown: make([]dto.MonthStats, 0, 12),
	}
	for m := time.January; m <= time.December; m++ {
		b := byMonth[int(m)]
		report.MonthlyBreakdown = append(report.MonthlyBreakdown, dto.MonthStats{
			Month:         m.String()[:3],
			MonthNumber:   int(m),
			Total:         b.Total,
			Scheduled:     b.Scheduled,
			Completed:     b.Completed,
			Cancelled:     b.Cancelled,
			TotalDuration: b.TotalDuration,
		})
		report.Summary.TotalAppointments += b.Total
		report.Summary.TotalCompleted += b.Completed
		report.Summary.TotalCancelled += b.Cancelled
	}
	report.Summary.AveragePerMonth = int(math.Round(float64(report.Summary.TotalAppointments) / 12))
	return report
}

// TotalDays counts started days between start and end.
func TotalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

func ToRangeStatistics(s *entity.RangeStats) dto.RangeStatistics {
	return dto.RangeStatistics{
		TotalAppointments: s.TotalAppointments,
		Scheduled:         s.Scheduled,
		Completed:         s.Completed,
		Cancelled:         s.Cancelled,
		TotalDuration:     s.TotalDuration,
		AvgDuration:       utils.RoundTo(s.AvgDuration, 1),
		TotalAttendees:    s.TotalAttendees,
	}
}

func ToDayStats(days []entity.DayBucket) []dto.DayStats {
	out := make([]dto.DayStats, 0, len(days))
	for _, d := range days {
		out = append(out, dto.DayStats{
			Date:      d.Day.Format(constants.ReportDayFormat),
			Total:     d.Total,
			Scheduled: d.Scheduled,
			Completed: d.Completed,
			Cancelled: d.Cancelled,
		})
	}
	return out
}

func ToManagerCounts(counts []entity.ManagerCount) []dto.ManagerCount {
	out := make([]dto.ManagerCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.ManagerCount{
			ManagerID: c.ManagerID,
			Name:      utils.FullName(c.FirstName, c.LastName),
			Count:     c.Count,
		})
	}
	return out
}

func ToDetails(details []entity.AppointmentDetail) []dto.AppointmentDetail {
	out := make([]dto.AppointmentDetail, 0, len(details))
	for _, d := range details {
		out = append(out, dto.AppointmentDetail{
			ID:            d.ID,
			Title:         d.Title,
			Status:        d.Status,
			ScheduledDate: d.ScheduledDate,
			Duration:      d.Duration,
			ManagerID:     d.ManagerID,
			ManagerName:   utils.FullName(d.ManagerFirstName, d.ManagerLastName),
			AttendeeCount: d.AttendeeCount,
		})
	}
	return out
}

func ToActivityUser(u *userEntity.User) dto.ActivityUser {
	return dto.ActivityUser{
		ID:         u.ID,
		Name:       utils.FullName(u.FirstName, u.LastName),
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}
}

func ToActivity(a *entity.UserActivity) dto.Activity {
	return dto.Activity{
		AppointmentsCreated:  a.Created,
		AppointmentsAssigned: a.Assigned,
		AppointmentsAccepted: a.Accepted,
		AppointmentsDeclined: a.Declined,
		AppointmentsAttended: a.Attended,
		ResponseRate:         utils.Percent(float64(a.Accepted+a.Declined), float64(a.Assigned)),
		AttendanceRate:       utils.Percent(float64(a.Attended), float64(a.Accepted)),
		TotalHoursInMeetings: utils.RoundTo(float64(a.AttendedMinutes)/60, 1),
	}
}

func ToStatusSummary(s *entity.StatusSummary) *dto.StatusSummaryReportResponse {
	total := float64(s.Total)
	return &dto.StatusSummaryReportResponse{
		Overview: dto.StatusOverview{
			Total:     s.Total,
			Scheduled: s.Scheduled,
			Completed: s.Completed,
			Cancelled: s.Cancelled,
		},
		AttendeeResponses: dto.AttendeeResponses{
			TotalPending:  s.PendingResponses,
			TotalAccepted: s.AcceptedResponses,
			TotalDeclined: s.DeclinedResponses,
			ResponseRate:  utils.Percent(float64(s.AcceptedResponses+s.DeclinedResponses), float64(s.TotalAttendees)),
		},
		Trends: dto.StatusTrends{
			ThisWeek:  s.ThisWeek,
			ThisMonth: s.ThisMonth,
			LastMonth: s.LastMonth,
		},
		HealthMetrics: dto.HealthMetrics{
			CancellationRate:    utils.Percent(float64(s.Cancelled), total),
			CompletionRate:      utils.Percent(float64(s.Completed), total),
			AverageResponseTime: utils.RoundTo(s.AvgResponseHours, 1),
		},
	}
}
