package main

import (
	"errors"
	"time"

	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/constants"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"gorm.io/gorm"
)

type seedSubCategory struct {
	Category string
	Name     string
}

type seedProduct struct {
	SubCategory string
	Name        string
	Description string
	Price       string
	Stock       int
	Image       string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		LogLevel:               cfg.Database.LogLevel,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
	if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Warnw("seed_default_admin_failed", "error", err)
	}

	db := models.DB
	categoryIDs := seedCategories(db, map[string]string{
		"Electronics": "Phones, audio and accessories",
		"Lifestyle":   "Bags, home and everyday goods",
	})
	subCategoryIDs := seedSubCategories(db, categoryIDs, []seedSubCategory{
		{Category: "Electronics", Name: "Audio"},
		{Category: "Electronics", Name: "Wearables"},
		{Category: "Lifestyle", Name: "Bags"},
	})
	productIDs := seedProducts(db, categoryIDs, subCategoryIDs, []seedProduct{
		{SubCategory: "Audio", Name: "Wireless Earphones", Description: "Bluetooth 5.3 with active noise cancellation", Price: "99.99", Stock: 120, Image: "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800"},
		{SubCategory: "Wearables", Name: "Smart Watch", Description: "Heart rate monitoring and fitness tracking", Price: "199.99", Stock: 45, Image: "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800"},
		{SubCategory: "Bags", Name: "Travel Backpack", Description: "Waterproof with USB charging port", Price: "79.99", Stock: 60, Image: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800"},
	})
	userIDs := seedUsers(db, []models.User{
		{Email: "alice@example.com", DisplayName: "Alice", Status: constants.StatusActive},
		{Email: "bob@example.com", DisplayName: "Bob", Status: constants.StatusActive},
	})
	seedCoupons(db)
	seedOffers(db)
	seedOrder(db, userIDs, productIDs)

	logger.Infow("seed_completed",
		"categories", len(categoryIDs),
		"subcategories", len(subCategoryIDs),
		"products", len(productIDs),
		"users", len(userIDs),
	)
}

func seedCategories(db *gorm.DB, items map[string]string) map[string]uint {
	ids := make(map[string]uint, len(items))
	for name, description := range items {
		category := models.Category{Name: name, Description: description, Status: constants.StatusActive}
		if err := db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			logger.Warnw("seed_category_failed", "name", name, "error", err)
			continue
		}
		ids[name] = category.ID
	}
	return ids
}

func seedSubCategories(db *gorm.DB, categoryIDs map[string]uint, items []seedSubCategory) map[string]uint {
	ids := make(map[string]uint, len(items))
	for _, item := range items {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			continue
		}
		sub := models.SubCategory{CategoryID: categoryID, Name: item.Name, Status: constants.StatusActive}
		if err := db.Where("category_id = ? AND name = ?", categoryID, item.Name).FirstOrCreate(&sub).Error; err != nil {
			logger.Warnw("seed_subcategory_failed", "name", item.Name, "error", err)
			continue
		}
		ids[item.Name] = sub.ID
	}
	return ids
}

func seedProducts(db *gorm.DB, categoryIDs, subCategoryIDs map[string]uint, items []seedProduct) []uint {
	var subs []models.SubCategory
	if err := db.Find(&subs).Error; err != nil {
		logger.Warnw("seed_load_subcategories_failed", "error", err)
		return nil
	}
	parent := make(map[uint]uint, len(subs))
	for _, sub := range subs {
		parent[sub.ID] = sub.CategoryID
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		subID, ok := subCategoryIDs[item.SubCategory]
		if !ok {
			continue
		}
		product := models.Product{
			CategoryID:    parent[subID],
			SubCategoryID: subID,
			Name:          item.Name,
			Description:   item.Description,
			Price:         models.MustMoney(item.Price),
			Stock:         item.Stock,
			Images:        models.StringArray{item.Image},
			Status:        constants.StatusActive,
		}
		if err := db.Where("name = ?", item.Name).FirstOrCreate(&product).Error; err != nil {
			logger.Warnw("seed_product_failed", "name", item.Name, "error", err)
			continue
		}
		ids = append(ids, product.ID)
	}
	return ids
}

func seedUsers(db *gorm.DB, users []models.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, user := range users {
		if err := db.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
			logger.Warnw("seed_user_failed", "email", user.Email, "error", err)
			continue
		}
		ids = append(ids, user.ID)
	}
	return ids
}

func seedCoupons(db *gorm.DB) {
	admin := service.NewCouponAdminService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db))
	expiry := time.Now().AddDate(0, 3, 0)
	maxDiscount := models.MustMoney("100")
	totalLimit := 100
	perUser := 1
	inputs := []service.CreateCouponInput{
		{
			Code:               "SAVE20",
			Description:        "20% off orders over 50",
			DiscountPercentage: models.MustMoney("20").Decimal,
			MinOrderAmount:     models.MustMoney("50"),
			MaxDiscountAmount:  &maxDiscount,
			ExpiryDate:         &expiry,
			UsageLimitPerUser:  &perUser,
			TotalUsageLimit:    &totalLimit,
		},
		{
			Code:               "WELCOME10",
			Description:        "10% off the first order",
			DiscountPercentage: models.MustMoney("10").Decimal,
			ExpiryDate:         &expiry,
			UsageLimitPerUser:  &perUser,
		},
	}
	for _, input := range inputs {
		if _, err := admin.Create(input); err != nil {
			if errors.Is(err, service.ErrCouponCodeExists) {
				continue
			}
			logger.Warnw("seed_coupon_failed", "code", input.Code, "error", err)
		}
	}
}

func seedOffers(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.OfferImage{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	now := time.Now()
	end := now.AddDate(0, 1, 0)
	offers := []models.OfferImage{
		{Image: "https://images.unsplash.com/photo-1607082348824-0a96f2a4b9da?w=1200", Description: "Summer sale", DisplayOrder: 1, StartDate: &now, EndDate: &end, Status: constants.StatusActive},
		{Image: "https://images.unsplash.com/photo-1607083206968-13611e3d76db?w=1200", Description: "New arrivals", DisplayOrder: 2, Status: constants.StatusActive},
	}
	if err := db.Create(&offers).Error; err != nil {
		logger.Warnw("seed_offers_failed", "error", err)
	}
}

// seedOrder 创建一笔带优惠码的待确认订单，便于演示确认后核销
func seedOrder(db *gorm.DB, userIDs, productIDs []uint) {
	if len(userIDs) == 0 || len(productIDs) == 0 {
		return
	}
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	coupons := service.NewCouponService(couponRepo, usageRepo, repository.NewUserRepository(db))
	orders := service.NewOrderService(repository.NewOrderRepository(db), repository.NewProductRepository(db), coupons, nil)
	if _, err := orders.Create(service.CreateOrderInput{
		UserID:     userIDs[0],
		Address:    "1 Demo Street",
		Items:      []service.CreateOrderItem{{ProductID: productIDs[0], Quantity: 1}},
		CouponCode: "SAVE20",
	}); err != nil {
		logger.Warnw("seed_order_failed", "error", err)
	}
}
