package queue

import (
	"context"
	"crypto/tls"
	"fmt"

	"appointment-scheduler/core/config"
	"appointment-scheduler/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client that producers need.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Password != "" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(RedisConnOpt(cfg.Redis))
}

type periodicTask struct {
	cronspec string
	task     *asynq.Task
	opts     []asynq.Option
}

// Worker runs task handlers and periodic tasks in-process.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	periodic  []periodicTask
	queue     string
}

func NewWorker(cfg *config.Config) *Worker {
	connOpt := RedisConnOpt(cfg.Redis)
	queueName := cfg.Queue.Queue
	if queueName == "" {
		queueName = "default"
	}

	server := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues:      map[string]int{queueName: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:TaskFailed", "type", task.Type(), "error", err)
		}),
		Logger: asynqLogger{},
	})

	return &Worker{
		server:    server,
		scheduler: asynq.NewScheduler(connOpt, &asynq.SchedulerOpts{Logger: asynqLogger{}}),
		mux:       asynq.NewServeMux(),
		queue:     queueName,
	}
}

func (w *Worker) Queue() string {
	return w.queue
}

func (w *Worker) Handle(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

func (w *Worker) HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

// Every registers a task enqueued on the given cron expression (e.g. "@every 5m").
func (w *Worker) Every(cronspec string, task *asynq.Task, opts ...asynq.Option) {
	w.periodic = append(w.periodic, periodicTask{cronspec: cronspec, task: task, opts: opts})
}

func (w *Worker) Start() error {
	for _, p := range w.periodic {
		opts := append([]asynq.Option{asynq.Queue(w.queue)}, p.opts...)
		if _, err := w.scheduler.Register(p.cronspec, p.task, opts...); err != nil {
			return fmt.Errorf("register periodic task %s: %w", p.task.Type(), err)
		}
	}
	if len(w.periodic) > 0 {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	logger.Info("Queue:WorkerStarted", "queue", w.queue, "periodic", len(w.periodic))
	return nil
}

func (w *Worker) Shutdown() {
	if len(w.periodic) > 0 {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	logger.Info("Queue:WorkerStopped")
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("asynq", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info("asynq", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("asynq", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error("asynq", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { logger.Error("asynq:fatal", "detail", fmt.Sprint(args...)) }
