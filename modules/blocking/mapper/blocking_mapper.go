package mapper

import (
	"appointment-scheduler/modules/blocking/dto"
	"appointment-scheduler/modules/blocking/entity"
	userDto "appointment-scheduler/modules/user/dto"
)

func ToBlockListItemResponse(item *entity.BlockListItem) dto.BlockListItemResponse {
	return dto.BlockListItemResponse{
		BlockID: item.BlockID,
		User: userDto.UserSummary{
			ID:         item.UserID,
			Name:       item.FirstName + " " + item.LastName,
			Email:      item.Email,
			Role:       item.Role,
			Department: item.Department,
		},
		Reason:    item.Reason,
		BlockedAt: item.BlockedAt,
	}
}

func ToBlockListResponse(items []entity.BlockListItem) []dto.BlockListItemResponse {
	result := make([]dto.BlockListItemResponse, 0, len(items))
	for i := range items {
		result = append(result, ToBlockListItemResponse(&items[i]))
	}
	return result
}
