package bulkupload

import (
	"appointment-scheduler/core/config"
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/core/queue"
	"appointment-scheduler/core/storage"
	"appointment-scheduler/modules/bulkupload/controller"
	"appointment-scheduler/modules/bulkupload/repository"
	"appointment-scheduler/modules/bulkupload/router"
	"appointment-scheduler/modules/bulkupload/service"
	"appointment-scheduler/modules/bulkupload/worker"

	"github.com/labstack/echo/v4"
)

// Init registers the upload routes and, when a worker is given, the import and sweep tasks.
func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, users service.UserDirectory, store storage.FileStorage, q queue.Enqueuer, w *queue.Worker, notifier service.Notifier, cfg *config.Config) service.BulkUploadServiceInterface {
	repo := repository.NewBulkUploadRepository(db)
	svc := service.NewBulkUploadService(repo, users, store, q, notifier, service.Options{
		MaxSizeBytes: cfg.Upload.MaxSizeBytes,
		StuckAfter:   cfg.Upload.StuckAfter,
		Queue:        cfg.Queue.Queue,
	})
	ctrl := controller.NewBulkUploadController(svc)

	router.NewBulkUploadRouter(ctrl).Register(g, mw)

	if w != nil {
		w.HandleFunc(worker.TypeProcessUpload, worker.NewProcessHandler(svc))
		w.HandleFunc(worker.TypeSweepStuck, worker.NewSweepHandler(svc))
		w.Every(cfg.Upload.SweepCron, worker.NewSweepTask())
	}

	return svc
}
