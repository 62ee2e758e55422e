package app

import (
	"context"
	"errors"
	"net"

	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/provider"
	"github.com/storedesk/internal/router"
	"github.com/storedesk/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 与 Worker 服务
func BuildRunner(ctx context.Context, cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !isValidMode(mode) {
		return nil, errors.New("unknown mode: " + mode)
	}
	if models.DB == nil {
		return nil, errors.New("database is not initialized")
	}

	container, err := provider.NewContainer(ctx, cfg, models.DB)
	if err != nil {
		return nil, err
	}

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		services = append(services, NewHTTPService(addr, engine, cfg.Server.Gzip))
	}
	if mode == ModeAll || mode == ModeWorker {
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container.OrderService, container.OfferImageService)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				_ = container.Close()
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			_ = container.Close()
			return nil, errors.New("worker mode requires queue.enabled")
		}
	}

	return NewRunner(services...).WithCloser(container.Close), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(context.Background(), opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", net.JoinHostPort(opts.Config.Server.Host, opts.Config.Server.Port),
		"mode", opts.Mode,
	)
	return RunWithOptions(runner, opts)
}
