package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"appointment-scheduler/core/constants"
	coreDto "appointment-scheduler/core/dto"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/metrics"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/queue"
	"appointment-scheduler/core/storage"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/bulkupload/dto"
	"appointment-scheduler/modules/bulkupload/entity"
	"appointment-scheduler/modules/bulkupload/mapper"
	"appointment-scheduler/modules/bulkupload/parser"
	"appointment-scheduler/modules/bulkupload/repository"
	"appointment-scheduler/modules/bulkupload/worker"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	storagePrefix = "uploads"

	NotificationBulkUploadFinished = "bulk_upload_finished"
)

var allowedExtensions = map[string]bool{".csv": true, ".xls": true, ".xlsx": true}

var allowedMimeTypes = map[string]bool{
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// UserDirectory is the part of the user service the import needs.
type UserDirectory interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userEntity.User, *errors.AppError)
	EmailExists(ctx context.Context, email string) (bool, *errors.AppError)
	Create(ctx context.Context, input *userDto.CreateUserInput) (*userEntity.User, *errors.AppError)
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, kind string, data map[string]any)
}

type Options struct {
	MaxSizeBytes int64
	StuckAfter   time.Duration
	Queue        string
}

type BulkUploadServiceInterface interface {
	Accept(ctx context.Context, actor *utils.TokenClaims, file *dto.UploadFile) (*dto.UploadAcceptedResponse, *errors.AppError)
	Process(ctx context.Context, uploadID uuid.UUID) error
	History(ctx context.Context, actor *utils.TokenClaims, status string, params params.QueryParams) (*coreDto.Page[dto.UploadResponse], *errors.AppError)
	Get(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) (*dto.UploadResponse, *errors.AppError)
	Download(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) (*dto.DownloadFile, *errors.AppError)
	Errors(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID, params params.QueryParams) (*dto.UploadErrorsPage, *errors.AppError)
	Delete(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) *errors.AppError
	SweepStuck(ctx context.Context) (int, error)
}

type BulkUploadService struct {
	repo     repository.BulkUploadRepositoryInterface
	users    UserDirectory
	store    storage.FileStorage
	queue    queue.Enqueuer
	notifier Notifier
	opts     Options
	now      func() time.Time
}

func NewBulkUploadService(repo repository.BulkUploadRepositoryInterface, users UserDirectory, store storage.FileStorage, q queue.Enqueuer, notifier Notifier, opts Options) *BulkUploadService {
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = 10 << 20
	}
	if opts.StuckAfter <= 0 {
		opts.StuckAfter = 30 * time.Minute
	}
	return &BulkUploadService{repo: repo, users: users, store: store, queue: q, notifier: notifier, opts: opts, now: time.Now}
}

// ===================== Intake =====================

func (s *BulkUploadService) Accept(ctx context.Context, actor *utils.TokenClaims, file *dto.UploadFile) (*dto.UploadAcceptedResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	if !actor.IsManager() {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only managers can upload bulk users", nil)
	}
	if file == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "File is required", nil)
	}
	if !allowedFile(file.Name, file.ContentType) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Only CSV and Excel files are allowed", nil)
	}
	if file.Size > s.opts.MaxSizeBytes {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("File size too large. Maximum size is %dMB", s.opts.MaxSizeBytes>>20), nil)
	}

	const failed = "Something went wrong during file upload"

	body, err := file.Open()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, failed, err)
	}
	defer body.Close()

	mimeType, _, _ := mime.ParseMediaType(file.ContentType)
	key := utils.StorageKey(storagePrefix, actor.UserID.String(), file.Name, s.now())
	if err := s.store.Put(ctx, key, body, file.Size, mimeType); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, failed, err)
	}

	upload, err := s.repo.Create(ctx, &entity.BulkUpload{
		UploadedBy:       actor.UserID,
		FileName:         key,
		OriginalFileName: filepath.Base(file.Name),
		FileSize:         file.Size,
		MimeType:         mimeType,
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, errors.NewAppError(errors.ErrCreateFailed, failed, err)
	}

	if err := s.enqueue(ctx, upload.ID); err != nil {
		now := s.now()
		upload.Fail("File processing failed: could not queue upload", now, now)
		if _, cerr := s.repo.Complete(ctx, upload); cerr != nil {
			logger.Error("BulkUploadService:Accept:FailUpload", "upload_id", upload.ID.String(), "error", cerr)
		}
		s.discard(ctx, key)
		metrics.ImportUploads.WithLabelValues(string(entity.StatusFailed)).Inc()
		return nil, errors.NewAppError(errors.ErrInternalServer, failed, err)
	}

	logger.Info("BulkUploadService:Accept", "upload_id", upload.ID.String(), "uploaded_by", actor.UserID.String(), "size", file.Size)
	return &dto.UploadAcceptedResponse{
		UploadID:   upload.ID,
		FileName:   upload.OriginalFileName,
		Status:     string(upload.Status),
		UploadedAt: upload.CreatedAt,
	}, nil
}

func allowedFile(name, contentType string) bool {
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && allowedMimeTypes[mediaType]
}

func (s *BulkUploadService) enqueue(ctx context.Context, uploadID uuid.UUID) error {
	task, err := worker.NewProcessTask(uploadID)
	if err != nil {
		return err
	}
	opts := []asynq.Option{}
	if s.opts.Queue != "" {
		opts = append(opts, asynq.Queue(s.opts.Queue))
	}
	_, err = s.queue.EnqueueContext(ctx, task, opts...)
	return err
}

func (s *BulkUploadService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Error("BulkUploadService:Discard", "key", key, "error", err)
	}
}

// ===================== Processing =====================

// Process imports every row of an upload and moves it to its terminal status.
// Uploads that are gone or already terminal are skipped.
func (s *BulkUploadService) Process(ctx context.Context, uploadID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ImportTaskTimeout)
	defer cancel()

	upload, err := s.repo.FindByID(ctx, uploadID)
	if err != nil {
		return err
	}
	if upload == nil || upload.Status != entity.StatusProcessing {
		logger.Warn("BulkUploadService:Process:Skip", "upload_id", uploadID.String())
		return nil
	}

	started := s.now()
	rows, err := s.readRows(ctx, upload)
	if err != nil {
		upload.Fail("File processing failed: "+err.Error(), started, s.now())
	} else {
		successful, rowErrors := s.importRows(ctx, rows)
		upload.Finish(len(rows), successful, rowErrors, started, s.now())
	}

	applied, err := s.repo.Complete(ctx, upload)
	if err != nil {
		return err
	}
	if !applied {
		logger.Warn("BulkUploadService:Process:AlreadyTerminal", "upload_id", uploadID.String())
		return nil
	}

	metrics.ImportUploads.WithLabelValues(string(upload.Status)).Inc()
	logger.Info("BulkUploadService:Process",
		"upload_id", uploadID.String(),
		"status", upload.Status,
		"total", upload.TotalRecords,
		"successful", upload.SuccessfulRecords,
		"errors", upload.ErrorRecords,
	)

	s.notifyFinished(ctx, upload)
	return nil
}

func (s *BulkUploadService) readRows(ctx context.Context, upload *entity.BulkUpload) ([]parser.Row, error) {
	body, err := s.store.Get(ctx, upload.FileName)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parser.Parse(body, upload.OriginalFileName)
}

// importRows handles each row on its own; a bad row never stops the rest.
func (s *BulkUploadService) importRows(ctx context.Context, rows []parser.Row) (int, entity.RowErrors) {
	successful := 0
	rowErrors := entity.RowErrors{}

	for i, row := range rows {
		rowNumber := row.Number(i)

		if rowErr := row.Validate(rowNumber); rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}

		exists, appErr := s.users.EmailExists(ctx, row.Email)
		if appErr != nil {
			rowErrors = append(rowErrors, entity.RowError{Row: rowNumber, Field: "general", Message: appErr.Message, Data: row.Data()})
			continue
		}
		if exists {
			rowErrors = append(rowErrors, entity.RowError{Row: rowNumber, Field: "email", Message: "Email already exists", Data: row.Data()})
			continue
		}

		_, appErr = s.users.Create(ctx, &userDto.CreateUserInput{
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Email:      row.Email,
			Password:   row.Password,
			Role:       row.Role,
			Phone:      row.Phone,
			Department: row.Department,
		})
		if appErr != nil {
			rowErrors = append(rowErrors, entity.RowError{Row: rowNumber, Field: "general", Message: appErr.Message, Data: row.Data()})
			continue
		}
		successful++
	}

	metrics.ImportRows.WithLabelValues("created").Add(float64(successful))
	metrics.ImportRows.WithLabelValues("rejected").Add(float64(len(rowErrors)))
	return successful, rowErrors
}

func (s *BulkUploadService) notifyFinished(ctx context.Context, upload *entity.BulkUpload) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, upload.UploadedBy,
		"Bulk upload finished",
		fmt.Sprintf("%s: %d of %d users imported", upload.OriginalFileName, upload.SuccessfulRecords, upload.TotalRecords),
		NotificationBulkUploadFinished,
		map[string]any{"uploadId": upload.ID.String(), "status": string(upload.Status)},
	)
}

// SweepStuck fails uploads that have been processing for longer than StuckAfter.
func (s *BulkUploadService) SweepStuck(ctx context.Context) (int, error) {
	ids, err := s.repo.FailStuck(ctx, s.now().Add(-s.opts.StuckAfter), entity.RowErrors{{Row: 0, Message: "Processing timed out"}})
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		metrics.ImportUploads.WithLabelValues(string(entity.StatusFailed)).Inc()
		logger.Warn("BulkUploadService:SweepStuck", "upload_id", id.String())
	}
	return len(ids), nil
}

// ===================== Queries =====================

func (s *BulkUploadService) History(ctx context.Context, actor *utils.TokenClaims, status string, params params.QueryParams) (*coreDto.Page[dto.UploadResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	filter := repository.HistoryFilter{Status: strings.TrimSpace(status)}
	if filter.Status != "" && !entity.UploadStatus(filter.Status).Valid() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Status must be one of: processing, completed, failed, partial", nil)
	}
	if !actor.IsManager() {
		filter.UploadedBy = &actor.UserID
	}

	result, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving upload history", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Items))
	for _, u := range result.Items {
		ids = append(ids, u.UploadedBy)
	}
	users, appErr := s.users.GetByIDs(ctx, ids)
	if appErr != nil {
		return nil, appErr
	}

	return &coreDto.Page[dto.UploadResponse]{
		Items:      mapper.ToUploadResponses(result.Items, users),
		Pagination: coreDto.NewPagination(result.PageNumber, result.PageSize, result.TotalItems),
	}, nil
}

// load returns the upload if the actor owns it or is a manager. denied is the
// 403 message for the calling operation.
func (s *BulkUploadService) load(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID, failed, denied string) (*entity.BulkUpload, *errors.AppError) {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	if upload == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Upload not found", nil)
	}
	if !actor.IsManager() && !upload.OwnedBy(actor.UserID) {
		return nil, errors.NewAppError(errors.ErrForbidden, denied, nil)
	}
	return upload, nil
}

func (s *BulkUploadService) Get(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) (*dto.UploadResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	upload, appErr := s.load(ctx, actor, id, "Something went wrong while retrieving upload details", "You can only view your own uploads")
	if appErr != nil {
		return nil, appErr
	}
	users, appErr := s.users.GetByIDs(ctx, []uuid.UUID{upload.UploadedBy})
	if appErr != nil {
		return nil, appErr
	}
	return mapper.ToUploadResponse(upload, users), nil
}

// Download opens the stored file. The returned body outlives ctx's timeout, so
// the caller's context governs the stream.
func (s *BulkUploadService) Download(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) (*dto.DownloadFile, *errors.AppError) {
	const failed = "Something went wrong while downloading file"

	lookupCtx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	upload, appErr := s.load(lookupCtx, actor, id, failed, "You can only download your own files")
	cancel()
	if appErr != nil {
		return nil, appErr
	}

	body, err := s.store.Get(ctx, upload.FileName)
	if err != nil {
		if stdErrors.Is(err, storage.ErrObjectNotFound) {
			return nil, errors.NewAppError(errors.ErrNotFound, "File not found on server", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, failed, err)
	}

	return &dto.DownloadFile{
		FileName:    upload.OriginalFileName,
		ContentType: upload.MimeType,
		Body:        body,
	}, nil
}

func (s *BulkUploadService) Errors(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID, params params.QueryParams) (*dto.UploadErrorsPage, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	upload, appErr := s.load(ctx, actor, id, "Something went wrong while retrieving upload errors", "You can only view your own upload errors")
	if appErr != nil {
		return nil, appErr
	}

	total := len(upload.Errors)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	page := make([]entity.RowError, end-start)
	copy(page, upload.Errors[start:end])

	return &dto.UploadErrorsPage{
		Data: dto.UploadErrorsResponse{
			UploadInfo: mapper.ToUploadInfo(upload),
			Errors:     page,
		},
		Pagination: coreDto.NewPagination(params.PageNumber, params.PageSize, total),
	}, nil
}

// Delete removes the stored file, then the record.
func (s *BulkUploadService) Delete(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	const failed = "Something went wrong while deleting upload"

	upload, appErr := s.load(ctx, actor, id, failed, "You can only delete your own uploads")
	if appErr != nil {
		return appErr
	}

	if err := s.store.Delete(ctx, upload.FileName); err != nil && !stdErrors.Is(err, storage.ErrObjectNotFound) {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, err)
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, err)
	}
	if !removed {
		return errors.NewAppError(errors.ErrNotFound, "Upload not found", nil)
	}

	logger.Info("BulkUploadService:Delete", "upload_id", id.String(), "user_id", actor.UserID.String())
	return nil
}
