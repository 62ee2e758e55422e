package service

import (
	"errors"
	"fmt"

	"github.com/storedesk/internal/models"
)

// 通用错误
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrQueueUnavailable   = errors.New("queue unavailable")
)

// 优惠券错误
var (
	ErrCouponInvalid      = errors.New("coupon invalid")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInactive     = errors.New("coupon inactive")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrCouponMinAmount    = errors.New("coupon min amount not reached")
	ErrCouponUsageLimit   = errors.New("coupon usage limit reached")
	ErrCouponPerUserLimit = errors.New("coupon per user limit reached")
	ErrCouponCodeExists   = errors.New("coupon code exists")
)

// 商品目录错误
var (
	ErrCategoryInvalid     = errors.New("category invalid")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryNameExists  = errors.New("category name exists")
	ErrCategoryInUse       = errors.New("category in use")
	ErrSubCategoryInvalid  = errors.New("subcategory invalid")
	ErrSubCategoryNotFound = errors.New("subcategory not found")
	ErrProductInvalid      = errors.New("product invalid")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductImageLimit   = errors.New("product image limit exceeded")
)

// 订单错误
var (
	ErrOrderInvalid         = errors.New("order invalid")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderStatusInvalid   = errors.New("order status invalid")
	ErrPaymentStatusInvalid = errors.New("payment status invalid")
)

// 活动图错误
var (
	ErrOfferInvalid  = errors.New("offer image invalid")
	ErrOfferNotFound = errors.New("offer image not found")
)

// 上传错误
var (
	ErrUploadTooLarge        = errors.New("upload too large")
	ErrUploadTypeNotAllowed  = errors.New("upload type not allowed")
	ErrUploadInvalidImage    = errors.New("upload invalid image")
	ErrUploadImageTooLarge   = errors.New("upload image dimension too large")
	ErrUploadSceneNotAllowed = errors.New("upload scene not allowed")
)

// CouponMinAmountError 订单金额未达到优惠券门槛，携带门槛金额用于提示
type CouponMinAmountError struct {
	MinOrderAmount models.Money
}

func (e *CouponMinAmountError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCouponMinAmount.Error(), e.MinOrderAmount.String())
}

// Is 使 errors.Is(err, ErrCouponMinAmount) 成立
func (e *CouponMinAmountError) Is(target error) bool {
	return target == ErrCouponMinAmount
}

// Key 国际化消息键
func (e *CouponMinAmountError) Key() string {
	return "error.coupon_min_amount"
}

// Args 国际化消息参数
func (e *CouponMinAmountError) Args() []interface{} {
	return []interface{}{e.MinOrderAmount.String()}
}

// CouponPerUserLimitError 用户已用满单用户次数，携带次数上限用于提示
type CouponPerUserLimitError struct {
	Limit int
}

func (e *CouponPerUserLimitError) Error() string {
	return fmt.Sprintf("%s: %d", ErrCouponPerUserLimit.Error(), e.Limit)
}

// Is 使 errors.Is(err, ErrCouponPerUserLimit) 成立
func (e *CouponPerUserLimitError) Is(target error) bool {
	return target == ErrCouponPerUserLimit
}

// Key 国际化消息键
func (e *CouponPerUserLimitError) Key() string {
	return "error.coupon_per_user_used"
}

// Args 国际化消息参数
func (e *CouponPerUserLimitError) Args() []interface{} {
	return []interface{}{e.Limit}
}

// LocalizedError 带国际化键与参数的错误
type LocalizedError interface {
	error
	Key() string
	Args() []interface{}
}

// IsCouponRejection 是否为优惠券业务拒绝（预期结果，不应按故障记录）
func IsCouponRejection(err error) bool {
	switch {
	case errors.Is(err, ErrCouponNotFound),
		errors.Is(err, ErrCouponInactive),
		errors.Is(err, ErrCouponExpired),
		errors.Is(err, ErrCouponMinAmount),
		errors.Is(err, ErrCouponUsageLimit),
		errors.Is(err, ErrCouponPerUserLimit):
		return true
	default:
		return false
	}
}
