package public

import (
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ValidateCouponRequest 优惠券试算请求
type ValidateCouponRequest struct {
	CouponCode  string        `json:"coupon_code" binding:"required,coupon_code"`
	UserID      uint          `json:"user_id" binding:"required"`
	OrderAmount *models.Money `json:"order_amount" binding:"required"`
}

// ApplyCouponRequest 优惠券核销请求
type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code" binding:"required,coupon_code"`
	UserID     uint   `json:"user_id" binding:"required"`
}

// ValidateCoupon 校验优惠券并返回折扣试算，不修改任何计数
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}
	quote, err := h.CouponService.Quote(service.QuoteInput{
		Code:        req.CouponCode,
		UserID:      req.UserID,
		OrderAmount: *req.OrderAmount,
	})
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_validate_failed")
		return
	}
	response.Success(c, quote)
}

// ApplyCoupon 核销优惠券
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}
	result, err := h.CouponService.Apply(service.ApplyInput{
		Code:   req.CouponCode,
		UserID: req.UserID,
	})
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_apply_failed")
		return
	}
	handlershared.RequestLog(c).Infow("coupon_applied",
		"coupon_code", result.Code,
		"user_id", result.UserID,
		"usage_count", result.UsageCount,
	)
	response.Success(c, result)
}
