package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultOfferSweepInterval = 5 * time.Minute

// Service 异步队列服务，包含任务消费与周期调度
type Service struct {
	name      string
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.Named("worker")
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
		logger.Warnw("worker_task_failed", "task_type", task.Type(), "error", err)
	})
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: logger.Named("scheduler")})
	if _, err := scheduler.Register(offerSweepSpec(cfg.OfferSweepIntervalSeconds), queue.NewOfferExpireTask(),
		asynq.Queue(queue.DefaultQueue), asynq.MaxRetry(1)); err != nil {
		return nil, fmt.Errorf("register offer sweep failed: %w", err)
	}

	return &Service{
		name:      "worker",
		server:    server,
		scheduler: scheduler,
		mux:       mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动消费与调度，阻塞直到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if err := s.scheduler.Start(); err != nil {
		s.server.Shutdown()
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.scheduler.Shutdown()
	s.server.Shutdown()
	return nil
}

func offerSweepSpec(seconds int) string {
	interval := time.Duration(seconds) * time.Second
	if interval <= 0 {
		interval = defaultOfferSweepInterval
	}
	return "@every " + interval.String()
}
