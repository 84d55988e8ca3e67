package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/bulkupload/entity"

	"github.com/google/uuid"
)

const uploadColumns = `id, uploaded_by, file_name, original_file_name, file_size, mime_type, status,
	total_records, successful_records, error_records, errors, processed_at, processing_time_ms,
	created_at, updated_at`

type BulkUploadRepository struct {
	DB database.IDatabase
}

func NewBulkUploadRepository(db database.IDatabase) *BulkUploadRepository {
	return &BulkUploadRepository{DB: db}
}

// HistoryFilter narrows upload history. A nil UploadedBy means every uploader.
type HistoryFilter struct {
	UploadedBy *uuid.UUID
	Status     string
}

type BulkUploadRepositoryInterface interface {
	Create(ctx context.Context, upload *entity.BulkUpload) (*entity.BulkUpload, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BulkUpload, error)
	Complete(ctx context.Context, upload *entity.BulkUpload) (bool, error)
	List(ctx context.Context, filter HistoryFilter, params params.QueryParams) (*entity.PaginatedBulkUploadEntity, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FailStuck(ctx context.Context, startedBefore time.Time, rowErrors entity.RowErrors) ([]uuid.UUID, error)
}

func (r *BulkUploadRepository) Create(ctx context.Context, upload *entity.BulkUpload) (*entity.BulkUpload, error) {
	query := `
		INSERT INTO bulk_uploads (uploaded_by, file_name, original_file_name, file_size, mime_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + uploadColumns

	var created entity.BulkUpload
	err := r.DB.GetContext(ctx, &created, query,
		upload.UploadedBy, upload.FileName, upload.OriginalFileName, upload.FileSize, upload.MimeType, entity.StatusProcessing)
	if err != nil {
		logger.Error("BulkUploadRepository:Create", "error", err)
		return nil, err
	}
	return &created, nil
}

func (r *BulkUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BulkUpload, error) {
	var upload entity.BulkUpload
	err := r.DB.GetContext(ctx, &upload, `SELECT `+uploadColumns+` FROM bulk_uploads WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("BulkUploadRepository:FindByID", "error", err)
		return nil, err
	}
	return &upload, nil
}

// Complete writes the terminal state. It only applies while the row is still
// processing and reports whether it did.
func (r *BulkUploadRepository) Complete(ctx context.Context, upload *entity.BulkUpload) (bool, error) {
	query := `
		UPDATE bulk_uploads
		SET status = $2, total_records = $3, successful_records = $4, error_records = $5,
		    errors = $6, processed_at = $7, processing_time_ms = $8, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'
	`
	res, err := r.DB.SQLx().ExecContext(ctx, query,
		upload.ID, upload.Status, upload.TotalRecords, upload.SuccessfulRecords, upload.ErrorRecords,
		upload.Errors, upload.ProcessedAt, upload.ProcessingTimeMs)
	if err != nil {
		logger.Error("BulkUploadRepository:Complete", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BulkUploadRepository) List(ctx context.Context, filter HistoryFilter, params params.QueryParams) (*entity.PaginatedBulkUploadEntity, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.UploadedBy != nil {
		args = append(args, *filter.UploadedBy)
		where += fmt.Sprintf(` AND uploaded_by = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM bulk_uploads`+where, args...); err != nil {
		logger.Error("BulkUploadRepository:List:Count", "error", err)
		return nil, err
	}

	query := `SELECT ` + uploadColumns + ` FROM bulk_uploads` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	uploads := []entity.BulkUpload{}
	if err := r.DB.SelectContext(ctx, &uploads, query, append(args, params.PageSize, params.Offset())...); err != nil {
		logger.Error("BulkUploadRepository:List:Select", "error", err)
		return nil, err
	}

	return &entity.PaginatedBulkUploadEntity{
		Items:      uploads,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *BulkUploadRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.DB.SQLx().ExecContext(ctx, `DELETE FROM bulk_uploads WHERE id = $1`, id)
	if err != nil {
		logger.Error("BulkUploadRepository:Delete", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FailStuck moves uploads still processing since before startedBefore to failed
// and returns their ids.
func (r *BulkUploadRepository) FailStuck(ctx context.Context, startedBefore time.Time, rowErrors entity.RowErrors) ([]uuid.UUID, error) {
	query := `
		UPDATE bulk_uploads
		SET status = 'failed', errors = $2, processed_at = NOW(), updated_at = NOW()
		WHERE status = 'processing' AND created_at < $1
		RETURNING id
	`
	ids := []uuid.UUID{}
	if err := r.DB.SelectContext(ctx, &ids, query, startedBefore, rowErrors); err != nil {
		logger.Error("BulkUploadRepository:FailStuck", "error", err)
		return nil, err
	}
	return ids, nil
}
