package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"appointment-scheduler/core/constants"
	coreDto "appointment-scheduler/core/dto"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/appointment/dto"
	"appointment-scheduler/modules/appointment/entity"
	"appointment-scheduler/modules/appointment/mapper"
	"appointment-scheduler/modules/appointment/repository"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

// UserDirectory resolves users for attendee validation and rendering.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userEntity.User, *errors.AppError)
}

// BlockChecker reports which of others have a block edge with userID in either direction.
type BlockChecker interface {
	BlockedAmong(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]uuid.UUID, *errors.AppError)
}

// Notifier delivers in-app notifications. Delivery failures are the notifier's concern.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, kind string, data map[string]any)
}

const (
	NotificationAppointmentInvite   = "appointment_invite"
	NotificationAppointmentResponse = "appointment_response"
)

type AppointmentServiceInterface interface {
	Create(ctx context.Context, actor *utils.TokenClaims, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *errors.AppError)
	Get(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) (*dto.AppointmentResponse, *errors.AppError)
	Update(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, *errors.AppError)
	Delete(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) *errors.AppError
	Accept(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.RespondRequest) (*dto.AppointmentResponse, *errors.AppError)
	Decline(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.RespondRequest) (*dto.AppointmentResponse, *errors.AppError)
	StatusSummary(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) (*dto.StatusSummaryResponse, *errors.AppError)

	List(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError)
	Filter(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*dto.FilterResult, *errors.AppError)
	Export(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery) (*dto.ExportFile, *errors.AppError)
	MyCreated(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError)
	MyAssigned(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError)
	ListCreatedBy(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, q *dto.AppointmentQuery, params params.QueryParams) (*dto.UserAppointments, *errors.AppError)
	ListAssignedTo(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, q *dto.AppointmentQuery, params params.QueryParams) (*dto.UserAppointments, *errors.AppError)
}

type AppointmentService struct {
	repo     repository.AppointmentRepositoryInterface
	users    UserDirectory
	blocks   BlockChecker
	notifier Notifier
	now      func() time.Time
}

func NewAppointmentService(repo repository.AppointmentRepositoryInterface, users UserDirectory, blocks BlockChecker, notifier Notifier) *AppointmentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AppointmentService{repo: repo, users: users, blocks: blocks, notifier: notifier, now: time.Now}
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, uuid.UUID, string, string, string, map[string]any) {}

// ===================== Lifecycle =====================

func (s *AppointmentService) Create(ctx context.Context, actor *utils.TokenClaims, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if !actor.IsManager() {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only managers can create appointments", nil)
	}
	if strings.TrimSpace(req.Title) == "" || req.AttendeeIDs == nil || strings.TrimSpace(req.ScheduledDate) == "" || req.Duration == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Title, attendees, scheduled date, and duration are required", nil)
	}
	if len(req.AttendeeIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "At least one attendee is required", nil)
	}

	scheduledDate, err := utils.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid scheduled date", err)
	}
	attendeeIDs, appErr := parseAttendeeIDs(req.AttendeeIDs)
	if appErr != nil {
		return nil, appErr
	}

	appt, err := entity.NewAppointment(actor.UserID, req.Title, req.Description, scheduledDate, *req.Duration, attendeeIDs, s.now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
	}

	if appErr := s.checkAttendees(ctx, actor.UserID, attendeeIDs); appErr != nil {
		return nil, appErr
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Something went wrong while creating appointment", err)
	}

	logger.Info("AppointmentService:Create",
		"appointment_id", created.ID.String(),
		"manager_id", actor.UserID.String(),
		"attendees", len(created.Attendees),
	)

	resp, users, appErr := s.render(ctx, created)
	if appErr != nil {
		return nil, appErr
	}
	s.notifyInvited(ctx, created, users, attendeeIDs)
	return resp, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) (*dto.AppointmentResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	appt, appErr := s.loadVisible(ctx, id, actor.UserID, "Something went wrong while retrieving appointment")
	if appErr != nil {
		return nil, appErr
	}
	resp, _, appErr := s.render(ctx, appt)
	return resp, appErr
}

func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	const failed = "Something went wrong while updating appointment"

	if !actor.IsManager() {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only managers can update appointments", nil)
	}
	appt, appErr := s.load(ctx, id, failed)
	if appErr != nil {
		return nil, appErr
	}
	if appt.ManagerID != actor.UserID {
		return nil, errors.NewAppError(errors.ErrForbidden, "You can only update your own appointments", nil)
	}
	if req.Empty() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "No valid fields to update", nil)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := entity.ValidateTitle(title); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
		}
		appt.Title = title
	}
	if req.Description != nil {
		description := entity.NormalizeDescription(req.Description)
		if err := entity.ValidateDescription(description); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
		}
		appt.Description = description
	}
	if req.ScheduledDate != nil {
		date, err := utils.ParseDate(*req.ScheduledDate)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid scheduled date", err)
		}
		if err := entity.ValidateScheduledDate(date, s.now()); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
		}
		appt.ScheduledDate = date
	}
	if req.Duration != nil {
		if err := entity.ValidateDuration(*req.Duration); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
		}
		appt.Duration = *req.Duration
	}
	if req.Status != nil {
		if err := entity.ValidateStatus(*req.Status); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
		}
		appt.Status = entity.AppointmentStatus(*req.Status)
	}

	var added []uuid.UUID
	replace := req.AttendeeIDs != nil
	if replace {
		if len(req.AttendeeIDs) == 0 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "At least one attendee is required", nil)
		}
		attendeeIDs, appErr := parseAttendeeIDs(req.AttendeeIDs)
		if appErr != nil {
			return nil, appErr
		}
		if appErr := s.checkAttendees(ctx, actor.UserID, attendeeIDs); appErr != nil {
			return nil, appErr
		}
		for _, uid := range attendeeIDs {
			if !appt.HasAttendee(uid) {
				added = append(added, uid)
			}
		}
		appt.Attendees = entity.MergeAttendees(appt.Attendees, appt.ID, attendeeIDs)
	}

	if err := s.repo.Update(ctx, appt, replace); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, failed, err)
	}

	updated, appErr := s.load(ctx, id, failed)
	if appErr != nil {
		return nil, appErr
	}

	logger.Info("AppointmentService:Update",
		"appointment_id", id.String(),
		"replaced_attendees", replace,
		"added_attendees", len(added),
	)

	resp, users, appErr := s.render(ctx, updated)
	if appErr != nil {
		return nil, appErr
	}
	s.notifyInvited(ctx, updated, users, added)
	return resp, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	const failed = "Something went wrong while deleting appointment"

	if !actor.IsManager() {
		return errors.NewAppError(errors.ErrForbidden, "Only managers can delete appointments", nil)
	}
	appt, appErr := s.load(ctx, id, failed)
	if appErr != nil {
		return appErr
	}
	if appt.ManagerID != actor.UserID {
		return errors.NewAppError(errors.ErrForbidden, "You can only delete your own appointments", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, err)
	}

	logger.Info("AppointmentService:Delete", "appointment_id", id.String(), "manager_id", actor.UserID.String())
	return nil
}

// ===================== Attendee responses =====================

// Accept has no role restriction: any assigned user may accept.
func (s *AppointmentService) Accept(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.RespondRequest) (*dto.AppointmentResponse, *errors.AppError) {
	return s.respond(ctx, id, actor, entity.AttendeeAccepted, req.Note(), "Something went wrong while accepting appointment")
}

func (s *AppointmentService) Decline(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.RespondRequest) (*dto.AppointmentResponse, *errors.AppError) {
	if !actor.IsDeveloper() {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only developers can decline appointments", nil)
	}
	return s.respond(ctx, id, actor, entity.AttendeeDeclined, req.Note(), "Something went wrong while declining appointment")
}

func (s *AppointmentService) respond(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, decision entity.AttendeeStatus, notes *string, failed string) (*dto.AppointmentResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	notAssigned := errors.NewAppError(errors.ErrForbidden, "You are not assigned to this appointment", nil)

	appt, appErr := s.load(ctx, id, failed)
	if appErr != nil {
		return nil, appErr
	}
	if !appt.HasAttendee(actor.UserID) {
		return nil, notAssigned
	}

	updated, err := s.repo.UpdateAttendeeStatus(ctx, id, actor.UserID, decision, s.now(), notes)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, failed, err)
	}
	if !updated {
		return nil, notAssigned
	}

	appt, appErr = s.load(ctx, id, failed)
	if appErr != nil {
		return nil, appErr
	}

	logger.Info("AppointmentService:Respond",
		"appointment_id", id.String(),
		"user_id", actor.UserID.String(),
		"status", string(decision),
	)

	resp, users, appErr := s.render(ctx, appt)
	if appErr != nil {
		return nil, appErr
	}

	data := map[string]any{"appointmentId": id.String(), "userId": actor.UserID.String(), "status": string(decision)}
	if notes != nil {
		data["notes"] = *notes
	}
	s.notifier.Notify(ctx, appt.ManagerID,
		fmt.Sprintf("Appointment %s", decision),
		fmt.Sprintf("%s %s \"%s\"", users.Summary(actor.UserID).Name, decision, appt.Title),
		NotificationAppointmentResponse, data)

	return resp, nil
}

func (s *AppointmentService) StatusSummary(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims) (*dto.StatusSummaryResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	appt, appErr := s.loadVisible(ctx, id, actor.UserID, "Something went wrong while retrieving appointment status")
	if appErr != nil {
		return nil, appErr
	}
	users, appErr := s.usersFor(ctx, *appt)
	if appErr != nil {
		return nil, appErr
	}
	return mapper.ToStatusSummaryResponse(appt, users), nil
}

// ===================== Queries =====================

func (s *AppointmentService) List(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	filter := baseFilter(q)
	scope(&filter, actor, q.Type)
	return s.page(ctx, filter, params, "Something went wrong while retrieving appointments")
}

func (s *AppointmentService) Filter(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*dto.FilterResult, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	const failed = "Something went wrong while filtering appointments"

	filter := baseFilter(q)
	filter.MinDuration = q.MinDuration
	filter.MaxDuration = q.MaxDuration
	filter.ManagerID = q.ManagerID
	filter.AttendeeStatus = q.AttendeeStatus
	scope(&filter, actor, q.Type)

	page, appErr := s.page(ctx, filter, params, failed)
	if appErr != nil {
		return nil, appErr
	}

	summary, err := s.repo.Summary(ctx, filter)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}

	return &dto.FilterResult{
		Page: page,
		Summary: dto.FilterSummary{
			TotalAppointments: page.Pagination.TotalItems,
			StatusBreakdown:   summary.StatusBreakdown,
			AvgDuration:       int(math.Round(summary.AvgDuration)),
		},
		Filters: q.Raw,
	}, nil
}

// MyCreated returns an empty page for non-managers.
func (s *AppointmentService) MyCreated(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError) {
	if !actor.IsManager() {
		return &coreDto.Page[dto.AppointmentResponse]{
			Items:      []dto.AppointmentResponse{},
			Pagination: coreDto.NewPagination(params.PageNumber, params.PageSize, 0),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	filter := baseFilter(q)
	filter.UserID = actor.UserID
	filter.Scope = repository.ScopeCreated
	return s.page(ctx, filter, params, "Something went wrong while retrieving created appointments")
}

func (s *AppointmentService) MyAssigned(ctx context.Context, actor *utils.TokenClaims, q *dto.AppointmentQuery, params params.QueryParams) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	filter := baseFilter(q)
	filter.UserID = actor.UserID
	filter.Scope = repository.ScopeAssigned
	filter.ResponseStatus = q.ResponseStatus
	return s.page(ctx, filter, params, "Something went wrong while retrieving assigned appointments")
}

func (s *AppointmentService) ListCreatedBy(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, q *dto.AppointmentQuery, params params.QueryParams) (*dto.UserAppointments, *errors.AppError) {
	filter := baseFilter(q)
	filter.Scope = repository.ScopeCreated
	return s.userAppointments(ctx, actor, targetID, filter, params, "Something went wrong while retrieving user created appointments")
}

func (s *AppointmentService) ListAssignedTo(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, q *dto.AppointmentQuery, params params.QueryParams) (*dto.UserAppointments, *errors.AppError) {
	filter := baseFilter(q)
	filter.Scope = repository.ScopeAssigned
	filter.ResponseStatus = q.ResponseStatus
	return s.userAppointments(ctx, actor, targetID, filter, params, "Something went wrong while retrieving user assigned appointments")
}

func (s *AppointmentService) userAppointments(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, filter repository.Filter, params params.QueryParams, failed string) (*dto.UserAppointments, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if !actor.IsManager() && targetID != actor.UserID {
		return nil, errors.NewAppError(errors.ErrForbidden, "You can only view your own appointments", nil)
	}

	target, appErr := s.users.GetByID(ctx, targetID)
	if appErr != nil {
		return nil, appErr
	}
	if target == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	filter.UserID = targetID
	page, appErr := s.page(ctx, filter, params, failed)
	if appErr != nil {
		return nil, appErr
	}

	return &dto.UserAppointments{
		User: mapper.UserIndex{target.ID: target}.Summary(target.ID),
		Page: page,
	}, nil
}

// ===================== Helpers =====================

func baseFilter(q *dto.AppointmentQuery) repository.Filter {
	return repository.Filter{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Statuses:  q.Statuses,
	}
}

// scope applies role visibility: developers only see appointments they attend, managers see
// the ones they manage or attend, narrowed by typ "created" or "assigned".
func scope(f *repository.Filter, actor *utils.TokenClaims, typ string) {
	f.UserID = actor.UserID
	if !actor.IsManager() {
		f.Scope = repository.ScopeAssigned
		return
	}
	switch typ {
	case "created":
		f.Scope = repository.ScopeCreated
	case "assigned":
		f.Scope = repository.ScopeAssigned
	default:
		f.Scope = repository.ScopeInvolved
	}
}

func (s *AppointmentService) page(ctx context.Context, filter repository.Filter, params params.QueryParams, failed string) (*coreDto.Page[dto.AppointmentResponse], *errors.AppError) {
	result, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	users, appErr := s.usersFor(ctx, result.Items...)
	if appErr != nil {
		return nil, appErr
	}
	return &coreDto.Page[dto.AppointmentResponse]{
		Items:      mapper.ToAppointmentResponses(result.Items, users),
		Pagination: coreDto.NewPagination(result.PageNumber, result.PageSize, result.TotalItems),
	}, nil
}

func (s *AppointmentService) load(ctx context.Context, id uuid.UUID, failed string) (*entity.Appointment, *errors.AppError) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	if appt == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Appointment not found", nil)
	}
	return appt, nil
}

func (s *AppointmentService) loadVisible(ctx context.Context, id, userID uuid.UUID, failed string) (*entity.Appointment, *errors.AppError) {
	appt, appErr := s.load(ctx, id, failed)
	if appErr != nil {
		return nil, appErr
	}
	if !appt.VisibleTo(userID) {
		return nil, errors.NewAppError(errors.ErrForbidden, "You do not have access to this appointment", nil)
	}
	return appt, nil
}

func (s *AppointmentService) usersFor(ctx context.Context, items ...entity.Appointment) (mapper.UserIndex, *errors.AppError) {
	if len(items) == 0 {
		return mapper.UserIndex{}, nil
	}
	users, appErr := s.users.GetByIDs(ctx, mapper.UserIDs(items...))
	if appErr != nil {
		return nil, appErr
	}
	return mapper.UserIndex(users), nil
}

func (s *AppointmentService) render(ctx context.Context, appt *entity.Appointment) (*dto.AppointmentResponse, mapper.UserIndex, *errors.AppError) {
	users, appErr := s.usersFor(ctx, *appt)
	if appErr != nil {
		return nil, nil, appErr
	}
	return mapper.ToAppointmentResponse(appt, users), users, nil
}

// parseAttendeeIDs drops duplicates keeping first occurrence. An id that is not a uuid
// cannot name a user and is reported as not found.
func parseAttendeeIDs(raw []string) ([]uuid.UUID, *errors.AppError) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, errors.NewAppError(errors.ErrNotFound, "One or more attendees not found", nil)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// checkAttendees verifies every attendee exists, is a developer and has no block edge
// with the manager. The first blocked attendee in request order is named in the error.
func (s *AppointmentService) checkAttendees(ctx context.Context, managerID uuid.UUID, ids []uuid.UUID) *errors.AppError {
	users, appErr := s.users.GetByIDs(ctx, ids)
	if appErr != nil {
		return appErr
	}
	if len(users) != len(ids) {
		return errors.NewAppError(errors.ErrNotFound, "One or more attendees not found", nil)
	}
	for _, id := range ids {
		u, ok := users[id]
		if !ok || u == nil {
			return errors.NewAppError(errors.ErrNotFound, "One or more attendees not found", nil)
		}
		if u.Role != constants.RoleDeveloper {
			return errors.NewAppError(errors.ErrInvalidInput, "All attendees must be developers", nil)
		}
	}

	blocked, appErr := s.blocks.BlockedAmong(ctx, managerID, ids)
	if appErr != nil {
		return appErr
	}
	if len(blocked) == 0 {
		return nil
	}
	blockedSet := make(map[uuid.UUID]struct{}, len(blocked))
	for _, id := range blocked {
		blockedSet[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := blockedSet[id]; ok {
			return errors.NewAppError(errors.ErrForbidden,
				fmt.Sprintf("Cannot schedule appointment with %s due to blocking restrictions", users[id].FullName()), nil)
		}
	}
	return nil
}

func (s *AppointmentService) notifyInvited(ctx context.Context, appt *entity.Appointment, users mapper.UserIndex, invited []uuid.UUID) {
	if len(invited) == 0 {
		return
	}
	manager := users.Summary(appt.ManagerID).Name
	data := map[string]any{
		"appointmentId": appt.ID.String(),
		"scheduledDate": appt.ScheduledDate.Format(time.RFC3339),
	}
	for _, id := range invited {
		s.notifier.Notify(ctx, id, "New appointment",
			fmt.Sprintf("%s invited you to \"%s\"", manager, appt.Title),
			NotificationAppointmentInvite, data)
	}
}
