package router

import (
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/bulkupload/controller"

	"github.com/labstack/echo/v4"
)

type BulkUploadRouter struct {
	BulkUploadController *controller.BulkUploadController
}

func NewBulkUploadRouter(bulkUploadController *controller.BulkUploadController) *BulkUploadRouter {
	return &BulkUploadRouter{BulkUploadController: bulkUploadController}
}

func (r *BulkUploadRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	uploads := g.Group("/bulk-upload", mw.AuthMiddleware())
	uploads.POST("/users", r.BulkUploadController.UploadUsers)
	uploads.GET("/history", r.BulkUploadController.GetUploadHistory)
	uploads.GET("/:id", r.BulkUploadController.GetUploadByID)
	uploads.GET("/:id/download", r.BulkUploadController.DownloadFile)
	uploads.GET("/:id/errors", r.BulkUploadController.GetUploadErrors)
	uploads.DELETE("/:id", r.BulkUploadController.DeleteUpload)
}
