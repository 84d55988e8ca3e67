package dto

import (
	"io"
	"time"

	coreDto "appointment-scheduler/core/dto"
	"appointment-scheduler/modules/bulkupload/entity"
	userDto "appointment-scheduler/modules/user/dto"

	"github.com/google/uuid"
)

// ===== Request DTOs =====

// UploadFile is the multipart part handed over by the controller.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// ===== Response DTOs =====

type UploadAcceptedResponse struct {
	UploadID   uuid.UUID `json:"uploadId"`
	FileName   string    `json:"fileName"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type UploadResponse struct {
	ID                uuid.UUID           `json:"id"`
	UploadedBy        userDto.UserSummary `json:"uploadedBy"`
	FileName          string              `json:"fileName"`
	OriginalFileName  string              `json:"originalFileName"`
	FileSize          int64               `json:"fileSize"`
	MimeType          string              `json:"mimeType"`
	Status            string              `json:"status"`
	TotalRecords      int                 `json:"totalRecords"`
	SuccessfulRecords int                 `json:"successfulRecords"`
	ErrorRecords      int                 `json:"errorRecords"`
	Errors            []entity.RowError   `json:"errors"`
	ProcessedAt       *time.Time          `json:"processedAt"`
	ProcessingTimeMs  *int64              `json:"processingTime"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type UploadInfo struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"fileName"`
	Status       string    `json:"status"`
	TotalRecords int       `json:"totalRecords"`
	ErrorRecords int       `json:"errorRecords"`
}

type UploadErrorsResponse struct {
	UploadInfo UploadInfo        `json:"uploadInfo"`
	Errors     []entity.RowError `json:"errors"`
}

type UploadErrorsPage struct {
	Data       UploadErrorsResponse
	Pagination *coreDto.Pagination
}

// DownloadFile streams a stored upload. The caller closes Body.
type DownloadFile struct {
	FileName    string
	ContentType string
	Body        io.ReadCloser
}
