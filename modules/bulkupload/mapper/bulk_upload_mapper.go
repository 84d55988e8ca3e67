package mapper

import (
	"appointment-scheduler/modules/bulkupload/dto"
	"appointment-scheduler/modules/bulkupload/entity"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

func uploader(id uuid.UUID, users map[uuid.UUID]*userEntity.User) userDto.UserSummary {
	u, ok := users[id]
	if !ok || u == nil {
		return userDto.UserSummary{ID: id}
	}
	return userDto.UserSummary{ID: u.ID, Name: u.FullName(), Email: u.Email, Role: u.Role}
}

func ToUploadResponse(u *entity.BulkUpload, users map[uuid.UUID]*userEntity.User) *dto.UploadResponse {
	rowErrors := []entity.RowError(u.Errors)
	if rowErrors == nil {
		rowErrors = []entity.RowError{}
	}
	return &dto.UploadResponse{
		ID:                u.ID,
		UploadedBy:        uploader(u.UploadedBy, users),
		FileName:          u.FileName,
		OriginalFileName:  u.OriginalFileName,
		FileSize:          u.FileSize,
		MimeType:          u.MimeType,
		Status:            string(u.Status),
		TotalRecords:      u.TotalRecords,
		SuccessfulRecords: u.SuccessfulRecords,
		ErrorRecords:      u.ErrorRecords,
		Errors:            rowErrors,
		ProcessedAt:       u.ProcessedAt,
		ProcessingTimeMs:  u.ProcessingTimeMs,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func ToUploadResponses(items []entity.BulkUpload, users map[uuid.UUID]*userEntity.User) []dto.UploadResponse {
	out := make([]dto.UploadResponse, 0, len(items))
	for i := range items {
		out = append(out, *ToUploadResponse(&items[i], users))
	}
	return out
}

func ToUploadInfo(u *entity.BulkUpload) dto.UploadInfo {
	return dto.UploadInfo{
		ID:           u.ID,
		FileName:     u.OriginalFileName,
		Status:       string(u.Status),
		TotalRecords: u.TotalRecords,
		ErrorRecords: u.ErrorRecords,
	}
}
