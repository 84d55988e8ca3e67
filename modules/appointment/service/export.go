package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/appointment/dto"
	"appointment-scheduler/modules/appointment/mapper"
)

const (
	ExportCSV   = "csv"
	ExportJSON  = "json"
	ExportExcel = "excel"

	emptyExportBody = "No appointments found"
)

var csvHeader = []string{
	"ID",
	"Title",
	"Description",
	"Manager Name",
	"Manager Email",
	"Scheduled Date",
	"Duration (minutes)",
	"Status",
	"Attendees",
	"Accepted Count",
	"Declined Count",
	"Pending Count",
	"Created At",
}

// Export renders every visible appointment matching q. Duration and attendee-status
// criteria are not applied to exports.
func (s *AppointmentService) Export(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery) (*dto.ExportFile, *errors.AppError) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = constants.DefaultExportFormat
	}
	switch format {
	case ExportCSV, ExportJSON:
	case ExportExcel:
		return nil, errors.NewAppError(errors.ErrNotImplemented, "Excel export not implemented yet", nil)
	default:
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid export format. Supported: csv, excel, json", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExportTimeout)
	defer cancel()

	const failed = "Something went wrong while exporting appointments"

	filter := baseFilter(q)
	filter.ManagerID = q.ManagerID
	scope(&filter, actor, q.Type)

	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	users, appErr := s.usersFor(ctx, items...)
	if appErr != nil {
		return nil, appErr
	}
	rows := mapper.ToAppointmentResponses(items, users)

	now := s.now()
	file := &dto.ExportFile{
		Filename: fmt.Sprintf("appointments_export_%s.%s", now.Format(constants.ExportFilenameDateForm), format),
	}

	switch format {
	case ExportJSON:
		file.ContentType = "application/json"
		file.Body, err = json.Marshal(dto.ExportDocument{
			ExportDate:   now,
			TotalRecords: len(rows),
			Filters:      q.Raw,
			Data:         rows,
		})
	default:
		file.ContentType = "text/csv"
		file.Body, err = renderCSV(rows)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, failed, err)
	}

	logger.Info("AppointmentService:Export", "user_id", actor.UserID.String(), "format", format, "records", len(rows))
	return file, nil
}

func renderCSV(rows []dto.AppointmentResponse) ([]byte, error) {
	if len(rows) == 0 {
		return []byte(emptyExportBody), nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, a := range rows {
		names := make([]string, 0, len(a.Attendees))
		counts := map[string]int{}
		for _, at := range a.Attendees {
			names = append(names, fmt.Sprintf("%s (%s)", at.User.Name, at.Status))
			counts[at.Status]++
		}

		description := ""
		if a.Description != nil {
			description = *a.Description
		}

		record := []string{
			a.ID.String(),
			a.Title,
			description,
			a.Manager.Name,
			a.Manager.Email,
			a.ScheduledDate.UTC().Format(time.RFC3339),
			strconv.Itoa(a.Duration),
			a.Status,
			strings.Join(names, "; "),
			strconv.Itoa(counts["accepted"]),
			strconv.Itoa(counts["declined"]),
			strconv.Itoa(counts["pending"]),
			a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
