package validator

import (
	"strings"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/utils"
	coreValidator "appointment-scheduler/core/validator"
	"appointment-scheduler/modules/auth/dto"
)

const minPasswordLength = 8

func ValidateRegisterRequest(req *dto.RegisterRequest) *coreValidator.ValidationResult {
	result := coreValidator.New()

	required := []struct {
		field string
		value string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
		{"role", req.Role},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			result.AddError(r.field, r.field+" is required")
		}
	}
	if result.HasError() {
		return result
	}

	if !utils.IsValidEmail(req.Email) {
		result.AddError("email", "Invalid email format")
	}
	if role := strings.TrimSpace(req.Role); role != constants.RoleManager && role != constants.RoleDeveloper {
		result.AddError("role", "Role must be Manager or Developer")
	}
	if len(req.Password) < minPasswordLength {
		result.AddError("password", "Password must be at least 8 characters")
	}
	return result
}

func ValidateLoginRequest(req *dto.LoginRequest) *coreValidator.ValidationResult {
	result := coreValidator.New()
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		result.AddError("email", "Email and password are required")
	}
	return result
}
