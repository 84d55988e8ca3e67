package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"appointment-scheduler/core/entity"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	StatusProcessing UploadStatus = "processing"
	StatusCompleted  UploadStatus = "completed"
	StatusPartial    UploadStatus = "partial"
	StatusFailed     UploadStatus = "failed"
)

func (s UploadStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// RowError describes why one input row was rejected. Row is the 1-based line
// in the source file (the header is row 1). Row 0 describes the whole file.
type RowError struct {
	Row     int               `json:"row"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// RowErrors is stored as a JSONB array.
type RowErrors []RowError

func (e RowErrors) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

func (e *RowErrors) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*e = RowErrors{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("row errors: unsupported type %T", value)
	}
	return json.Unmarshal(raw, e)
}

type BulkUpload struct {
	entity.BaseEntity
	UploadedBy        uuid.UUID    `db:"uploaded_by"`
	FileName          string       `db:"file_name"`
	OriginalFileName  string       `db:"original_file_name"`
	FileSize          int64        `db:"file_size"`
	MimeType          string       `db:"mime_type"`
	Status            UploadStatus `db:"status"`
	TotalRecords      int          `db:"total_records"`
	SuccessfulRecords int          `db:"successful_records"`
	ErrorRecords      int          `db:"error_records"`
	Errors            RowErrors    `db:"errors"`
	ProcessedAt       *time.Time   `db:"processed_at"`
	ProcessingTimeMs  *int64       `db:"processing_time_ms"`
}

func (u *BulkUpload) OwnedBy(userID uuid.UUID) bool {
	return u.UploadedBy == userID
}

// Finish records the outcome of processing. Any rejected row makes the upload
// partial, including the case where every row was rejected.
func (u *BulkUpload) Finish(total, successful int, rowErrors RowErrors, started, finished time.Time) {
	u.TotalRecords = total
	u.SuccessfulRecords = successful
	u.ErrorRecords = len(rowErrors)
	u.Errors = rowErrors
	if len(rowErrors) == 0 {
		u.Status = StatusCompleted
	} else {
		u.Status = StatusPartial
	}
	u.stamp(started, finished)
}

// Fail marks the whole file as unprocessable.
func (u *BulkUpload) Fail(message string, started, finished time.Time) {
	u.Status = StatusFailed
	u.Errors = RowErrors{{Row: 0, Message: message}}
	u.ErrorRecords = 0
	u.stamp(started, finished)
}

func (u *BulkUpload) stamp(started, finished time.Time) {
	ms := finished.Sub(started).Milliseconds()
	u.ProcessedAt = &finished
	u.ProcessingTimeMs = &ms
}

type PaginatedBulkUploadEntity = entity.Pagination[BulkUpload]
