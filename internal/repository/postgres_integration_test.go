//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storedesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CouponUsage{},
		&models.Coupon{},
		&models.Product{},
		&models.SubCategory{},
		&models.Category{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.SubCategory{},
		&models.Product{},
		&models.Coupon{},
		&models.CouponUsage{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{Name: "pg-audio", Status: "active"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	sub := &models.SubCategory{CategoryID: category.ID, Name: "pg-headphones", Status: "active"}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subcategory failed: %v", err)
	}

	repo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:    category.ID,
		SubCategoryID: sub.ID,
		Name:          "Rocket Headphones",
		Description:   "noise cancelling booster",
		Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		Stock:         10,
		Status:        "active",
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	for _, keyword := range []string{"rocket", "BOOSTER"} {
		rows, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 20, Search: keyword})
		if err != nil {
			t.Fatalf("product search %q failed: %v", keyword, err)
		}
		if total != 1 || len(rows) != 1 {
			t.Fatalf("product search %q want 1 got total=%d len=%d", keyword, total, len(rows))
		}
	}
}

func TestPostgresCouponLedgerConcurrentLimits(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	limit := 3
	coupon := &models.Coupon{
		Code:               "PGSAVE",
		DiscountPercentage: decimal.NewFromInt(10),
		ExpiryDate:         time.Now().Add(24 * time.Hour),
		UsageLimitPerUser:  2,
		TotalUsageLimit:    &limit,
		IsActive:           true,
	}
	couponRepo := NewCouponRepository(db)
	if err := couponRepo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	usageRepo := NewCouponUsageRepository(db)

	const workers = 10
	var (
		wg          sync.WaitGroup
		redeemed    atomic.Int32
		incremented atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := usageRepo.RecordRedemption(7, coupon.ID, coupon.UsageLimitPerUser, time.Now())
			if err != nil {
				t.Errorf("record redemption failed: %v", err)
				return
			}
			if ok {
				redeemed.Add(1)
			}
			ok, err = couponRepo.IncrementUsedCountWithinLimit(coupon.ID)
			if err != nil {
				t.Errorf("increment failed: %v", err)
				return
			}
			if ok {
				incremented.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := redeemed.Load(); got != 2 {
		t.Fatalf("per user redemptions want 2 got %d", got)
	}
	if got := incremented.Load(); got != int32(limit) {
		t.Fatalf("global increments want %d got %d", limit, got)
	}
	usage, err := usageRepo.GetUsage(7, coupon.ID)
	if err != nil {
		t.Fatalf("get usage failed: %v", err)
	}
	if usage == nil || usage.UsageCount != 2 {
		t.Fatalf("usage_count want 2 got %+v", usage)
	}
	stored, err := couponRepo.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.TotalUsedCount != limit {
		t.Fatalf("total_used_count want %d got %d", limit, stored.TotalUsedCount)
	}

	tooLow := 1
	stored.TotalUsageLimit = &tooLow
	ok, err := couponRepo.UpdateWithinUsage(stored)
	if err != nil {
		t.Fatalf("guarded update failed: %v", err)
	}
	if ok {
		t.Fatalf("total limit below used count must not be written")
	}
}
