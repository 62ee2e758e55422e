package repository

import (
	"errors"
	"time"

	"github.com/storedesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponUsageRepository 优惠券使用台账数据访问接口
type CouponUsageRepository interface {
	GetUsage(userID, couponID uint) (*models.CouponUsage, error)
	RecordRedemption(userID, couponID uint, limit int, now time.Time) (int, bool, error)
	ListByCoupon(couponID uint) ([]models.CouponUsage, error)
	MaxUsageCount(couponID uint) (int, error)
	DeleteByCoupon(couponID uint) error
	WithTx(tx *gorm.DB) CouponUsageRepository
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建优惠券使用台账仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) CouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// GetUsage 获取用户对某张券的台账记录，不存在返回 nil
func (r *GormCouponUsageRepository) GetUsage(userID, couponID uint) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	err := r.db.Where("user_id = ? AND coupon_id = ?", userID, couponID).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// RecordRedemption 原子地递增或创建台账记录。
// 返回最新使用次数；usage_count 已达 limit 时不写入并返回 ok=false。
func (r *GormCouponUsageRepository) RecordRedemption(userID, couponID uint, limit int, now time.Time) (int, bool, error) {
	if limit < 1 {
		return 0, false, nil
	}
	for attempt := 0; attempt < 2; attempt++ {
		result := r.db.Model(&models.CouponUsage{}).
			Where("user_id = ? AND coupon_id = ? AND usage_count < ?", userID, couponID, limit).
			Updates(map[string]interface{}{
				"usage_count":  gorm.Expr("usage_count + ?", 1),
				"last_used_at": now,
			})
		if result.Error != nil {
			return 0, false, result.Error
		}
		if result.RowsAffected > 0 {
			usage, err := r.GetUsage(userID, couponID)
			if err != nil {
				return 0, false, err
			}
			if usage == nil {
				return 0, false, gorm.ErrRecordNotFound
			}
			return usage.UsageCount, true, nil
		}

		existing, err := r.GetUsage(userID, couponID)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			return existing.UsageCount, false, nil
		}

		usage := &models.CouponUsage{
			UserID:     userID,
			CouponID:   couponID,
			UsageCount: 1,
			LastUsedAt: now,
		}
		created := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "coupon_id"}},
			DoNothing: true,
		}).Create(usage)
		if created.Error != nil {
			return 0, false, created.Error
		}
		if created.RowsAffected > 0 {
			return 1, true, nil
		}
		// 并发首单冲突：另一事务已创建记录，回到条件更新
	}

	existing, err := r.GetUsage(userID, couponID)
	if err != nil {
		return 0, false, err
	}
	if existing == nil {
		return 0, false, nil
	}
	return existing.UsageCount, false, nil
}

// ListByCoupon 获取券的全部台账记录，按最近使用倒序
func (r *GormCouponUsageRepository) ListByCoupon(couponID uint) ([]models.CouponUsage, error) {
	var usages []models.CouponUsage
	if err := r.db.
		Where("coupon_id = ?", couponID).
		Order("last_used_at desc, id desc").
		Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// MaxUsageCount 获取券在台账中的单用户最大使用次数，无记录时为 0
func (r *GormCouponUsageRepository) MaxUsageCount(couponID uint) (int, error) {
	var highest int
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Select("COALESCE(MAX(usage_count), 0)").
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest, nil
}

// DeleteByCoupon 删除券的全部台账记录
func (r *GormCouponUsageRepository) DeleteByCoupon(couponID uint) error {
	return r.db.Where("coupon_id = ?", couponID).Delete(&models.CouponUsage{}).Error
}
