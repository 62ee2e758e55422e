package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
	LogLevel               string // silent/error/warn/info
}

var gormLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

// InitDB 初始化数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	dialector, isSQLite, err := openDialector(driver, dsn)
	if err != nil {
		return err
	}
	level, ok := gormLogLevels[strings.ToLower(strings.TrimSpace(pool.LogLevel))]
	if !ok {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// SQLite 单写者，未显式配置时串行化连接，避免 database is locked
	if isSQLite && pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 1
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	DB = db
	return nil
}

func openDialector(driver, dsn string) (gorm.Dialector, bool, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), true, nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Tables 全部需要迁移的模型，顺序即建表顺序
func Tables() []interface{} {
	return []interface{}{
		&Admin{},
		&User{},
		&Category{},
		&SubCategory{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Coupon{},
		&CouponUsage{},
		&OfferImage{},
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return DB.AutoMigrate(Tables()...)
}
