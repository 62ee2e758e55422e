package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storedesk/internal/constants"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponMetrics 优惠券指标采集
type CouponMetrics interface {
	ObserveQuote(result string)
	ObserveApply(result string)
}

// EventPublisher 领域事件投递
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

// CouponRedeemedEvent 优惠券核销事件
type CouponRedeemedEvent struct {
	CouponID       uint      `json:"coupon_id"`
	Code           string    `json:"code"`
	UserID         uint      `json:"user_id"`
	UsageCount     int       `json:"usage_count"`
	TotalUsedCount int       `json:"total_used_count"`
	RedeemedAt     time.Time `json:"redeemed_at"`
}

const eventPublishTimeout = 5 * time.Second

// CouponService 优惠券校验与核销服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	userRepo   repository.UserRepository
	metrics    CouponMetrics
	events     EventPublisher
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository, userRepo repository.UserRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// SetMetrics 注入指标采集
func (s *CouponService) SetMetrics(metrics CouponMetrics) {
	s.metrics = metrics
}

// SetEventPublisher 注入事件投递
func (s *CouponService) SetEventPublisher(events EventPublisher) {
	s.events = events
}

// QuoteInput 优惠券试算输入
type QuoteInput struct {
	Code        string
	UserID      uint
	OrderAmount models.Money
}

// Quote 优惠券试算结果
type Quote struct {
	Code               string          `json:"code"`
	Description        string          `json:"description"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	OriginalAmount     models.Money    `json:"original_amount"`
	DiscountAmount     models.Money    `json:"discount_amount"`
	FinalAmount        models.Money    `json:"final_amount"`
}

// ApplyInput 优惠券核销输入
type ApplyInput struct {
	Code   string
	UserID uint
}

// RedemptionResult 核销结果
type RedemptionResult struct {
	CouponID       uint   `json:"coupon_id"`
	Code           string `json:"code"`
	UserID         uint   `json:"user_id"`
	UsageCount     int    `json:"usage_count"`
	RemainingUses  int    `json:"remaining_uses"`
	TotalUsedCount int    `json:"total_used_count"`
}

// CouponUsageRecord 统计中的单个用户记录
type CouponUsageRecord struct {
	UserID     uint      `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	UsageCount int       `json:"usage_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// CouponStats 优惠券使用统计
type CouponStats struct {
	CouponCode      string              `json:"coupon_code"`
	TotalUsedCount  int                 `json:"total_used_count"`
	TotalUsageLimit *int                `json:"total_usage_limit"`
	UniqueUsers     int                 `json:"unique_users"`
	UsageRecords    []CouponUsageRecord `json:"usage_records"`
}

// Quote 校验优惠券并计算折扣，只读且幂等
func (s *CouponService) Quote(input QuoteInput) (*Quote, error) {
	quote, err := s.quote(input)
	s.observeQuote(err)
	return quote, err
}

func (s *CouponService) quote(input QuoteInput) (*Quote, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" || input.UserID == 0 || input.OrderAmount.IsNegative() {
		return nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.IsExpired(s.now()) {
		return nil, ErrCouponExpired
	}
	if input.OrderAmount.Decimal.LessThan(coupon.MinOrderAmount.Decimal) {
		return nil, &CouponMinAmountError{MinOrderAmount: coupon.MinOrderAmount}
	}
	if coupon.GlobalLimitReached() {
		return nil, ErrCouponUsageLimit
	}

	usage, err := s.usageRepo.GetUsage(input.UserID, coupon.ID)
	if err != nil {
		return nil, err
	}
	if usage != nil && usage.UsageCount >= coupon.UsageLimitPerUser {
		return nil, &CouponPerUserLimitError{Limit: coupon.UsageLimitPerUser}
	}

	discount, final := ComputeDiscount(coupon.DiscountPercentage, input.OrderAmount, coupon.MaxDiscountAmount)
	return &Quote{
		Code:               coupon.Code,
		Description:        coupon.Description,
		DiscountPercentage: coupon.DiscountPercentage,
		OriginalAmount:     models.NewMoneyFromDecimal(input.OrderAmount.Decimal),
		DiscountAmount:     discount,
		FinalAmount:        final,
	}, nil
}

// Apply 核销优惠券：锁券、复核状态、递增用户台账与总次数在同一事务内完成
func (s *CouponService) Apply(input ApplyInput) (*RedemptionResult, error) {
	var result *RedemptionResult
	err := s.couponRepo.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.ApplyInTx(tx, input)
		return txErr
	})
	s.RecordApplyOutcome(result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordApplyOutcome 事务提交后记录核销指标，成功时投递核销事件
func (s *CouponService) RecordApplyOutcome(result *RedemptionResult, err error) {
	s.observeApply(err)
	if err == nil {
		s.publishRedeemed(result)
	}
}

// ApplyInTx 在调用方事务内核销优惠券，失败时由调用方回滚
func (s *CouponService) ApplyInTx(tx *gorm.DB, input ApplyInput) (*RedemptionResult, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" || input.UserID == 0 {
		return nil, ErrCouponInvalid
	}

	couponRepo := s.couponRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	resolved, err := couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, ErrCouponNotFound
	}
	coupon, err := couponRepo.LockByID(resolved.ID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	now := s.now()
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.IsExpired(now) {
		return nil, ErrCouponExpired
	}
	if coupon.GlobalLimitReached() {
		return nil, ErrCouponUsageLimit
	}

	usageCount, ok, err := usageRepo.RecordRedemption(input.UserID, coupon.ID, coupon.UsageLimitPerUser, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CouponPerUserLimitError{Limit: coupon.UsageLimitPerUser}
	}

	incremented, err := couponRepo.IncrementUsedCountWithinLimit(coupon.ID)
	if err != nil {
		return nil, err
	}
	if !incremented {
		return nil, ErrCouponUsageLimit
	}

	refreshed, err := couponRepo.GetByID(coupon.ID)
	if err != nil {
		return nil, err
	}
	totalUsed := coupon.TotalUsedCount + 1
	if refreshed != nil {
		totalUsed = refreshed.TotalUsedCount
	}

	remaining := coupon.UsageLimitPerUser - usageCount
	if remaining < 0 {
		remaining = 0
	}
	return &RedemptionResult{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		UserID:         input.UserID,
		UsageCount:     usageCount,
		RemainingUses:  remaining,
		TotalUsedCount: totalUsed,
	}, nil
}

// Stats 获取优惠券使用统计
func (s *CouponService) Stats(couponID uint) (*CouponStats, error) {
	if couponID == 0 {
		return nil, ErrCouponInvalid
	}
	coupon, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	usages, err := s.usageRepo.ListByCoupon(couponID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(usages))
	for _, usage := range usages {
		userIDs = append(userIDs, usage.UserID)
	}
	usersByID := make(map[uint]models.User, len(userIDs))
	if len(userIDs) > 0 && s.userRepo != nil {
		users, err := s.userRepo.ListByIDs(userIDs)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			usersByID[user.ID] = user
		}
	}

	records := make([]CouponUsageRecord, 0, len(usages))
	for _, usage := range usages {
		record := CouponUsageRecord{
			UserID:     usage.UserID,
			UsageCount: usage.UsageCount,
			LastUsedAt: usage.LastUsedAt,
		}
		if user, ok := usersByID[usage.UserID]; ok {
			record.UserName = user.DisplayName
			record.UserEmail = user.Email
		}
		records = append(records, record)
	}

	return &CouponStats{
		CouponCode:      coupon.Code,
		TotalUsedCount:  coupon.TotalUsedCount,
		TotalUsageLimit: coupon.TotalUsageLimit,
		UniqueUsers:     len(usages),
		UsageRecords:    records,
	}, nil
}

func (s *CouponService) observeQuote(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveQuote(couponResultLabel(err))
}

func (s *CouponService) observeApply(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveApply(couponResultLabel(err))
}

func (s *CouponService) publishRedeemed(result *RedemptionResult) {
	if s.events == nil || result == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()
	event := CouponRedeemedEvent{
		CouponID:       result.CouponID,
		Code:           result.Code,
		UserID:         result.UserID,
		UsageCount:     result.UsageCount,
		TotalUsedCount: result.TotalUsedCount,
		RedeemedAt:     s.now(),
	}
	if err := s.events.Publish(ctx, constants.EventCouponRedeemed, result.Code, event); err != nil {
		logger.Warnw("coupon_redeemed_event_publish_failed",
			"coupon_id", result.CouponID,
			"user_id", result.UserID,
			"error", err,
		)
	}
}

// couponResultLabel 指标结果标签
func couponResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCouponInvalid):
		return "invalid"
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponInactive):
		return "inactive"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponMinAmount):
		return "below_minimum"
	case errors.Is(err, ErrCouponUsageLimit):
		return "global_limit"
	case errors.Is(err, ErrCouponPerUserLimit):
		return "per_user_limit"
	default:
		return "error"
	}
}
