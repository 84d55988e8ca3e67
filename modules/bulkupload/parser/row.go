package parser

import (
	"strings"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/bulkupload/entity"
)

const minPasswordLength = 8

// Row is one candidate user read from an upload.
type Row struct {
	// Line is the 1-based line of the row in the source file; 0 when unknown.
	Line int

	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       string
	Phone      string
	Department string
}

// Data is the row as reported back in error descriptors. The password is left out.
func (r Row) Data() map[string]string {
	data := map[string]string{
		"firstName": r.FirstName,
		"lastName":  r.LastName,
		"email":     r.Email,
		"role":      r.Role,
	}
	if r.Phone != "" {
		data["phone"] = r.Phone
	}
	if r.Department != "" {
		data["department"] = r.Department
	}
	return data
}

// RowNumber maps a zero-based data index to its line in the file, assuming
// no lines were skipped.
func RowNumber(index int) int {
	return index + 2
}

// Number is the line reported for the row at the given data index.
func (r Row) Number(index int) int {
	if r.Line > 0 {
		return r.Line
	}
	return RowNumber(index)
}

// Validate returns the first problem with the row, or nil.
func (r Row) Validate(rowNumber int) *entity.RowError {
	required := []struct {
		field string
		value string
	}{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"password", r.Password},
		{"role", r.Role},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return r.fail(rowNumber, f.field, f.field+" is required")
		}
	}

	if !utils.IsValidEmail(r.Email) {
		return r.fail(rowNumber, "email", "Invalid email format")
	}
	if r.Role != constants.RoleManager && r.Role != constants.RoleDeveloper {
		return r.fail(rowNumber, "role", "Role must be Manager or Developer")
	}
	if len(r.Password) < minPasswordLength {
		return r.fail(rowNumber, "password", "Password must be at least 8 characters")
	}
	return nil
}

func (r Row) fail(rowNumber int, field, message string) *entity.RowError {
	return &entity.RowError{Row: rowNumber, Field: field, Message: message, Data: r.Data()}
}
