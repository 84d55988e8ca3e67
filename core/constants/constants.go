package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
	ContextToken     = "token"
)

// Timeouts
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
	ExportTimeout         = 60 * time.Second
	ImportTaskTimeout     = 10 * time.Minute
)

// Database pool
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
)

// Tokens
const (
	ScopeTokenAccess = "access"
	TokenTTL         = 12 * time.Hour
	TokenSweepCron   = "@every 1h"
)

// Redis keys
const (
	RedisKeyToken = "token:"
)

// Roles
const (
	RoleManager   = "Manager"
	RoleDeveloper = "Developer"
)

// Pagination
const (
	DefaultPageNumber      = 1
	DefaultPageSize        = 10
	DefaultErrorsPageSize  = 20
	MaxPageSize            = 100
	BulkUploadFormField    = "file"
	DefaultExportFormat    = "csv"
	ExportFilenameDateForm = "2006-01-02"
)

// Reports
const (
	DefaultReportTimeframe = "month"
	ReportDayFormat        = "2006-01-02"
)
