package controller

import (
	stdErrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/bulkupload/dto"
	"appointment-scheduler/modules/bulkupload/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BulkUploadController struct {
	controller.BaseController
	BulkUploadService service.BulkUploadServiceInterface
}

func NewBulkUploadController(svc service.BulkUploadServiceInterface) *BulkUploadController {
	return &BulkUploadController{
		BaseController:    controller.NewBaseController(),
		BulkUploadService: svc,
	}
}

func (c *BulkUploadController) claims(ctx echo.Context) (*utils.TokenClaims, error) {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return nil, c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return claims, nil
}

func (c *BulkUploadController) uploadID(ctx echo.Context) (uuid.UUID, error) {
	raw := ctx.Param("id")
	if raw == "" {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "Upload ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "Invalid upload ID")
	}
	return id, nil
}

// UploadUsers handles POST /bulk-upload/users
// @Summary Upload a CSV or Excel file of users to import (managers only)
// @Tags BulkUpload
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV, XLS or XLSX file"
// @Success 201 {object} controller.SuccessResponse{data=dto.UploadAcceptedResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 403 {object} controller.ErrorResponse
// @Router /bulk-upload/users [post]
func (c *BulkUploadController) UploadUsers(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	var file *dto.UploadFile
	header, err := ctx.FormFile(constants.BulkUploadFormField)
	switch {
	case err == nil:
		file = toUploadFile(header)
	case stdErrors.Is(err, http.ErrMissingFile), stdErrors.Is(err, http.ErrNotMultipart):
	default:
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid multipart form")
	}

	result, appErr := c.BulkUploadService.Accept(ctx.Request().Context(), claims, file)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "File uploaded successfully. Processing started.")
}

func toUploadFile(h *multipart.FileHeader) *dto.UploadFile {
	return &dto.UploadFile{
		Name:        h.Filename,
		Size:        h.Size,
		ContentType: h.Header.Get(echo.HeaderContentType),
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// GetUploadHistory handles GET /bulk-upload/history
// @Summary Upload history (managers see every upload)
// @Tags BulkUpload
// @Security BearerAuth
// @Produce json
// @Param status query string false "processing, completed, partial or failed"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.UploadResponse}
// @Router /bulk-upload/history [get]
func (c *BulkUploadController) GetUploadHistory(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.BulkUploadService.History(ctx.Request().Context(), claims, ctx.QueryParam("status"), *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Upload history retrieved successfully")
}

// GetUploadByID handles GET /bulk-upload/:id
// @Summary Upload details
// @Tags BulkUpload
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} controller.SuccessResponse{data=dto.UploadResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /bulk-upload/{id} [get]
func (c *BulkUploadController) GetUploadByID(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.uploadID(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.BulkUploadService.Get(ctx.Request().Context(), claims, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Upload details retrieved successfully")
}

// DownloadFile handles GET /bulk-upload/:id/download
// @Summary Download the original uploaded file
// @Tags BulkUpload
// @Security BearerAuth
// @Produce octet-stream
// @Param id path string true "Upload ID"
// @Success 200 {file} file
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /bulk-upload/{id}/download [get]
func (c *BulkUploadController) DownloadFile(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.uploadID(ctx)
	if err != nil {
		return err
	}

	file, appErr := c.BulkUploadService.Download(ctx.Request().Context(), claims, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	defer file.Body.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	return ctx.Stream(http.StatusOK, file.ContentType, file.Body)
}

// GetUploadErrors handles GET /bulk-upload/:id/errors
// @Summary Paginated row errors of an upload
// @Tags BulkUpload
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} controller.SuccessResponse{data=dto.UploadErrorsResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /bulk-upload/{id}/errors [get]
func (c *BulkUploadController) GetUploadErrors(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.uploadID(ctx)
	if err != nil {
		return err
	}

	p := params.NewQueryParamsWithDefault(ctx, constants.DefaultErrorsPageSize)
	result, appErr := c.BulkUploadService.Errors(ctx.Request().Context(), claims, id, *p)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.PaginatedResponse(ctx, result.Data, result.Pagination, "Upload errors retrieved successfully")
}

// DeleteUpload handles DELETE /bulk-upload/:id
// @Summary Delete an upload and its stored file
// @Tags BulkUpload
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /bulk-upload/{id} [delete]
func (c *BulkUploadController) DeleteUpload(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.uploadID(ctx)
	if err != nil {
		return err
	}

	if appErr := c.BulkUploadService.Delete(ctx.Request().Context(), claims, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Upload record deleted successfully")
}
