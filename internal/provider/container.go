package provider

import (
	"context"
	"errors"

	"github.com/storedesk/internal/authz"
	"github.com/storedesk/internal/cache"
	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/events"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/metrics"
	"github.com/storedesk/internal/queue"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"
	"github.com/storedesk/internal/storage"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Storage     storage.Storage
	Metrics     *metrics.Metrics
	Events      *events.KafkaPublisher

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	CategoryRepo    repository.CategoryRepository
	SubCategoryRepo repository.SubCategoryRepository
	ProductRepo     repository.ProductRepository
	OrderRepo       repository.OrderRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	OfferImageRepo  repository.OfferImageRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	CaptchaService     *service.CaptchaService
	UploadService      *service.UploadService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	CategoryService    *service.CategoryService
	SubCategoryService *service.SubCategoryService
	ProductService     *service.ProductService
	OrderService       *service.OrderService
	OfferImageService  *service.OfferImageService
}

// NewContainer 初始化容器，外部依赖（Redis/队列/Kafka）不可用时降级运行
func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("provider: config and db are required")
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Storage:     store,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	if cfg.Events.Enabled {
		publisher, err := events.NewKafkaPublisher(cfg.Events)
		if err != nil {
			logger.Errorw("provider_init_event_publisher_failed", "error", err)
		} else {
			c.Events = publisher
		}
	}

	c.initRepositories(db)
	if err := c.initServices(db); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.SubCategoryRepo = repository.NewSubCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.OfferImageRepo = repository.NewOfferImageRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UploadService = service.NewUploadService(c.Config.Upload, c.Storage)

	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo, c.UserRepo)
	if c.Metrics != nil {
		c.CouponService.SetMetrics(c.Metrics)
	}
	if c.Events != nil {
		c.CouponService.SetEventPublisher(c.Events)
	}
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CouponUsageRepo)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.SubCategoryService = service.NewSubCategoryService(c.SubCategoryRepo, c.CategoryRepo, c.ProductRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.SubCategoryRepo, c.UploadService, c.Config.Upload.MaxProductImages)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CouponService, c.QueueClient)
	c.OfferImageService = service.NewOfferImageService(c.OfferImageRepo, c.UploadService)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Events != nil {
		errs = append(errs, c.Events.Close())
	}
	if c.QueueClient != nil {
		errs = append(errs, c.QueueClient.Close())
	}
	errs = append(errs, cache.Close())
	return errors.Join(errs...)
}
