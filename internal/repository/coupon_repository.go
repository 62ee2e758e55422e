package repository

import (
	"errors"
	"strings"

	"github.com/storedesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	LockByID(id uint) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	UpdateWithinUsage(coupon *models.Coupon) (bool, error)
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	IncrementUsedCountWithinLimit(id uint) (bool, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCouponRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据优惠码获取优惠券（不区分大小写，库内统一存大写）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Where("code = ?", normalized).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// LockByID 在事务内锁定优惠券行（sqlite 下退化为普通读取）
func (r *GormCouponRepository) LockByID(id uint) (*models.Coupon, error) {
	query := r.db
	if supportsRowLock(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var coupon models.Coupon
	if err := query.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// Update 更新优惠券（不覆盖 total_used_count，该字段只由核销递增）
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	return r.db.Model(coupon).Select("*").Omit("id", "total_used_count", "created_at").Updates(coupon).Error
}

// UpdateWithinUsage 条件更新优惠券：新的总上限不得低于已用次数，
// 新的单用户上限不得低于台账中任一用户的已用次数。条件不满足时不写入并返回 false。
func (r *GormCouponRepository) UpdateWithinUsage(coupon *models.Coupon) (bool, error) {
	query := r.db.Model(coupon).Select("*").Omit("id", "total_used_count", "created_at")
	if coupon.TotalUsageLimit != nil {
		query = query.Where("total_used_count <= ?", *coupon.TotalUsageLimit)
	}
	query = query.Where(
		"NOT EXISTS (SELECT 1 FROM coupon_usages WHERE coupon_usages.coupon_id = coupons.id AND coupon_usages.usage_count > ?)",
		coupon.UsageLimitPerUser,
	)
	result := query.Updates(coupon)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除优惠券
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List 获取优惠券列表，按创建时间倒序
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	var coupons []models.Coupon
	query := r.db.Model(&models.Coupon{})

	if code := strings.ToUpper(strings.TrimSpace(filter.Code)); code != "" {
		query = query.Where("code LIKE ? ESCAPE '\\'", "%"+escapeLikePattern(code)+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at desc, id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// IncrementUsedCountWithinLimit 条件递增总使用次数，达到总上限时不更新并返回 false
func (r *GormCouponRepository) IncrementUsedCountWithinLimit(id uint) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("(total_usage_limit IS NULL OR total_used_count < total_usage_limit)").
		UpdateColumn("total_used_count", gorm.Expr("total_used_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
