package admin

import (
	"errors"
	"strings"

	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// GetAdminOrders 订单列表，按创建时间倒序
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	startDate, ok := parseDateParam(c.Query("start_date"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return
	}
	endDate, ok := parseDateParam(c.Query("end_date"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return
	}

	orders, total, err := h.OrderService.ListForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        handlershared.QueryUint(c, "user_id"),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		CreatedFrom:   startDate,
		CreatedTo:     endDate,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, orders, page, pageSize, total)
}

// GetAdminOrder 订单详情
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetForAdmin(id)
	if err != nil {
		respondOrderError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态，确认后触发优惠券核销
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if strings.TrimSpace(req.Status) == "" && strings.TrimSpace(req.PaymentStatus) == "" {
		respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
		return
	}
	order, err := h.OrderService.UpdateStatus(id, service.UpdateOrderStatusInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		respondOrderError(c, err, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}

// DeleteOrder 删除订单
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OrderService.Delete(id); err != nil {
		respondOrderError(c, err, "error.order_delete_failed")
		return
	}
	response.Success(c, nil)
}

func respondOrderError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrOrderStatusInvalid):
		respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
	case errors.Is(err, service.ErrPaymentStatusInvalid):
		respondError(c, response.CodeBadRequest, "error.payment_status_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
