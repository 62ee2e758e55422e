package service

import (
	"strings"
	"time"

	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo      repository.CouponRepository
	usageRepo repository.CouponUsageRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo, usageRepo: usageRepo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code               string
	Description        string
	DiscountPercentage decimal.Decimal
	MinOrderAmount     models.Money
	MaxDiscountAmount  *models.Money
	ExpiryDate         *time.Time
	UsageLimitPerUser  *int
	TotalUsageLimit    *int
	IsActive           *bool
}

// UpdateCouponInput 更新优惠券输入，仅非空字段生效
type UpdateCouponInput struct {
	Code                   *string
	Description            *string
	DiscountPercentage     *decimal.Decimal
	MinOrderAmount         *models.Money
	MaxDiscountAmount      *models.Money
	ClearMaxDiscountAmount bool
	ExpiryDate             *time.Time
	UsageLimitPerUser      *int
	TotalUsageLimit        *int
	ClearTotalUsageLimit   bool
	IsActive               *bool
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	if input.ExpiryDate == nil || input.ExpiryDate.IsZero() {
		return nil, ErrCouponInvalid
	}
	coupon := &models.Coupon{
		Code:               normalizeCouponCode(input.Code),
		Description:        strings.TrimSpace(input.Description),
		DiscountPercentage: input.DiscountPercentage,
		MinOrderAmount:     models.NewMoneyFromDecimal(input.MinOrderAmount.Decimal),
		MaxDiscountAmount:  input.MaxDiscountAmount,
		ExpiryDate:         *input.ExpiryDate,
		UsageLimitPerUser:  1,
		TotalUsageLimit:    input.TotalUsageLimit,
		IsActive:           true,
	}
	if input.UsageLimitPerUser != nil {
		coupon.UsageLimitPerUser = *input.UsageLimitPerUser
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureCodeAvailable(repo, coupon.Code, 0); err != nil {
			return err
		}
		if err := repo.Create(coupon); err != nil {
			if isUniqueViolation(err) {
				return ErrCouponCodeExists
			}
			return err
		}
		// is_active 带默认值，false 需要显式回写
		if !coupon.IsActive {
			return repo.Update(coupon)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update 局部更新优惠券，id 与 total_used_count 不可修改。
// 上限不得调到已发生的使用次数以下，校验与写入在锁定券行的事务内完成。
func (s *CouponAdminService) Update(id uint, input UpdateCouponInput) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	if input.ExpiryDate != nil && input.ExpiryDate.IsZero() {
		return nil, ErrCouponInvalid
	}

	var updated *models.Coupon
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		coupon, err := repo.LockByID(id)
		if err != nil {
			return err
		}
		if coupon == nil {
			return ErrCouponNotFound
		}

		input.applyTo(coupon)
		if err := validateCoupon(coupon); err != nil {
			return err
		}
		if coupon.TotalUsageLimit != nil && *coupon.TotalUsageLimit < coupon.TotalUsedCount {
			return ErrCouponInvalid
		}
		maxUsage, err := s.usageRepo.WithTx(tx).MaxUsageCount(coupon.ID)
		if err != nil {
			return err
		}
		if coupon.UsageLimitPerUser < maxUsage {
			return ErrCouponInvalid
		}
		if err := ensureCodeAvailable(repo, coupon.Code, coupon.ID); err != nil {
			return err
		}

		ok, err := repo.UpdateWithinUsage(coupon)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrCouponCodeExists
			}
			return err
		}
		if !ok {
			return ErrCouponInvalid
		}
		updated, err = repo.GetByID(coupon.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (input UpdateCouponInput) applyTo(coupon *models.Coupon) {
	if input.Code != nil {
		coupon.Code = normalizeCouponCode(*input.Code)
	}
	if input.Description != nil {
		coupon.Description = strings.TrimSpace(*input.Description)
	}
	if input.DiscountPercentage != nil {
		coupon.DiscountPercentage = *input.DiscountPercentage
	}
	if input.MinOrderAmount != nil {
		coupon.MinOrderAmount = models.NewMoneyFromDecimal(input.MinOrderAmount.Decimal)
	}
	if input.ClearMaxDiscountAmount {
		coupon.MaxDiscountAmount = nil
	} else if input.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = input.MaxDiscountAmount
	}
	if input.ExpiryDate != nil {
		coupon.ExpiryDate = *input.ExpiryDate
	}
	if input.UsageLimitPerUser != nil {
		coupon.UsageLimitPerUser = *input.UsageLimitPerUser
	}
	if input.ClearTotalUsageLimit {
		coupon.TotalUsageLimit = nil
	} else if input.TotalUsageLimit != nil {
		coupon.TotalUsageLimit = input.TotalUsageLimit
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
}

// Delete 删除优惠券并级联删除使用台账
func (s *CouponAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrCouponInvalid
	}
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.usageRepo.WithTx(tx).DeleteByCoupon(id); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(id)
	})
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// GetByCode 根据优惠码获取优惠券（不区分大小写）
func (s *CouponAdminService) GetByCode(code string) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

func ensureCodeAvailable(repo repository.CouponRepository, code string, excludeID uint) error {
	existing, err := repo.GetByCode(code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrCouponCodeExists
	}
	return nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateCoupon(coupon *models.Coupon) error {
	if coupon.Code == "" || len(coupon.Code) > 64 {
		return ErrCouponInvalid
	}
	if coupon.DiscountPercentage.IsNegative() || coupon.DiscountPercentage.GreaterThan(hundred) {
		return ErrCouponInvalid
	}
	if coupon.MinOrderAmount.IsNegative() {
		return ErrCouponInvalid
	}
	if coupon.MaxDiscountAmount != nil && coupon.MaxDiscountAmount.IsNegative() {
		return ErrCouponInvalid
	}
	if coupon.UsageLimitPerUser < 1 {
		return ErrCouponInvalid
	}
	if coupon.TotalUsageLimit != nil && *coupon.TotalUsageLimit < 1 {
		return ErrCouponInvalid
	}
	if coupon.ExpiryDate.IsZero() {
		return ErrCouponInvalid
	}
	return nil
}
