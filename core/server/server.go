package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment-scheduler/core/cache"
	"appointment-scheduler/core/config"
	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/metrics"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/core/queue"
	"appointment-scheduler/core/storage"
	"appointment-scheduler/modules/appointment"
	"appointment-scheduler/modules/auth"
	"appointment-scheduler/modules/blocking"
	"appointment-scheduler/modules/bulkupload"
	"appointment-scheduler/modules/notification"
	"appointment-scheduler/modules/report"
	"appointment-scheduler/modules/user"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const bodyLimit = "12M"

// Run boots the API and the embedded job worker and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(os.Stdout, cfg.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	tokenCache, redisClient := cache.NewFromConfig(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.NewFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	queueClient := queue.NewClient(cfg)
	defer queueClient.Close()
	worker := queue.NewWorker(cfg)

	e := newEcho(cfg, db)

	api := e.Group("/api/v1")
	users := user.Init(db)
	mw, sessions := auth.Init(api, db, tokenCache, users, worker, cfg)
	notifications := notification.Init(api, db, mw)
	blocks := blocking.Init(api, db, mw, users)
	user.InitAccounts(api, db, mw, sessions, blocks)
	appointment.Init(api, db, mw, users, blocks, notifications)
	bulkupload.Init(api, db, mw, users, store, queueClient, worker, notifications, cfg)
	report.Init(api, db, mw, users)

	// Without redis the API still serves; uploads stay processing until the worker can start.
	if err := worker.Start(); err != nil {
		logger.Error("Server:WorkerStart", "error", err)
	} else {
		defer worker.Shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", addr, "env", cfg.AppEnv)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Server:ShutdownSignal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Shutdown", "error", err)
		return err
	}
	logger.Info("Server:Stopped")
	return nil
}

func newEcho(cfg *config.Config, db *database.Database) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestLogger())
	e.Use(metrics.Middleware())

	e.GET("/health", health(db))
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func health(db *database.Database) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status, dbStatus := http.StatusOK, "up"
		if err := db.SQLx().PingContext(ctx); err != nil {
			logger.Warn("Server:Health", "error", err)
			status, dbStatus = http.StatusServiceUnavailable, "down"
		}
		return c.JSON(status, map[string]any{
			"success":   status == http.StatusOK,
			"message":   "Appointment scheduler API",
			"database":  dbStatus,
			"timestamp": time.Now().UTC(),
		})
	}
}
