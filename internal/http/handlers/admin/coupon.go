package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code               string          `json:"code" binding:"required,coupon_code"`
	Description        string          `json:"description" binding:"max=500"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	MinOrderAmount     models.Money    `json:"min_order_amount"`
	MaxDiscountAmount  *models.Money   `json:"max_discount_amount"`
	ExpiryDate         *time.Time      `json:"expiry_date" binding:"required"`
	UsageLimitPerUser  *int            `json:"usage_limit_per_user"`
	TotalUsageLimit    *int            `json:"total_usage_limit"`
	IsActive           *bool           `json:"is_active"`
}

// UpdateCouponRequest 更新优惠券请求，未传字段保持不变
type UpdateCouponRequest struct {
	Code                   *string          `json:"code" binding:"omitempty,coupon_code"`
	Description            *string          `json:"description" binding:"omitempty,max=500"`
	DiscountPercentage     *decimal.Decimal `json:"discount_percentage"`
	MinOrderAmount         *models.Money    `json:"min_order_amount"`
	MaxDiscountAmount      *models.Money    `json:"max_discount_amount"`
	ClearMaxDiscountAmount bool             `json:"clear_max_discount_amount"`
	ExpiryDate             *time.Time       `json:"expiry_date"`
	UsageLimitPerUser      *int             `json:"usage_limit_per_user"`
	TotalUsageLimit        *int             `json:"total_usage_limit"`
	ClearTotalUsageLimit   bool             `json:"clear_total_usage_limit"`
	IsActive               *bool            `json:"is_active"`
}

// GetAdminCoupons 优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.IsActive = &active
	}

	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, coupons, page, pageSize, total)
}

// GetAdminCoupon 优惠券详情
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Get(id)
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}
	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:               req.Code,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		MinOrderAmount:     req.MinOrderAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		ExpiryDate:         req.ExpiryDate,
		UsageLimitPerUser:  req.UsageLimitPerUser,
		TotalUsageLimit:    req.TotalUsageLimit,
		IsActive:           req.IsActive,
	})
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_create_failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}
	coupon, err := h.CouponAdminService.Update(id, service.UpdateCouponInput{
		Code:                   req.Code,
		Description:            req.Description,
		DiscountPercentage:     req.DiscountPercentage,
		MinOrderAmount:         req.MinOrderAmount,
		MaxDiscountAmount:      req.MaxDiscountAmount,
		ClearMaxDiscountAmount: req.ClearMaxDiscountAmount,
		ExpiryDate:             req.ExpiryDate,
		UsageLimitPerUser:      req.UsageLimitPerUser,
		TotalUsageLimit:        req.TotalUsageLimit,
		ClearTotalUsageLimit:   req.ClearTotalUsageLimit,
		IsActive:               req.IsActive,
	})
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_update_failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券及其使用台账
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_delete_failed")
		return
	}
	response.Success(c, nil)
}

// GetCouponStats 优惠券使用统计
func (h *Handler) GetCouponStats(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.CouponService.Stats(id)
	if err != nil {
		handlershared.RespondCouponError(c, err, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, stats)
}
