package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/storedesk/internal/constants"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/queue"
	"github.com/storedesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponRedeemEnqueuer 投递优惠券核销任务
type CouponRedeemEnqueuer interface {
	Enabled() bool
	EnqueueCouponRedeem(payload queue.CouponRedeemPayload) error
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	couponService *CouponService
	queueClient   CouponRedeemEnqueuer
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, couponService *CouponService, queueClient CouponRedeemEnqueuer) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		couponService: couponService,
		queueClient:   queueClient,
	}
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

var paymentStatuses = map[string]bool{
	constants.PaymentStatusPending:  true,
	constants.PaymentStatusPaid:     true,
	constants.PaymentStatusFailed:   true,
	constants.PaymentStatusRefunded: true,
}

// CreateOrderItem 下单商品
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput 下单输入（前台与种子数据使用）
type CreateOrderInput struct {
	UserID     uint
	Address    string
	Items      []CreateOrderItem
	CouponCode string
}

// UpdateOrderStatusInput 后台更新订单状态输入
type UpdateOrderStatusInput struct {
	Status        string
	PaymentStatus string
}

// Create 创建订单，携带优惠码时按试算结果写入折扣
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 || len(input.Items) == 0 {
		return nil, ErrOrderInvalid
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	original := decimal.Zero
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderInvalid
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		original = original.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			Title:      product.Name,
			UnitPrice:  product.Price,
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
		})
	}

	order := &models.Order{
		OrderNo:        generateOrderNo(),
		UserID:         input.UserID,
		Address:        strings.TrimSpace(input.Address),
		Status:         constants.OrderStatusPending,
		PaymentStatus:  constants.PaymentStatusPending,
		OriginalAmount: models.NewMoneyFromDecimal(original),
		DiscountAmount: models.NewMoneyFromDecimal(decimal.Zero),
		TotalAmount:    models.NewMoneyFromDecimal(original),
	}

	if code := strings.TrimSpace(input.CouponCode); code != "" {
		quote, err := s.couponService.Quote(QuoteInput{Code: code, UserID: input.UserID, OrderAmount: order.OriginalAmount})
		if err != nil {
			return nil, err
		}
		order.CouponCode = quote.Code
		order.DiscountAmount = quote.DiscountAmount
		order.TotalAmount = quote.FinalAmount
	}

	if err := s.orderRepo.Create(order, items); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// ListForAdmin 后台订单列表
func (s *OrderService) ListForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetForAdmin 后台订单详情
func (s *OrderService) GetForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus 后台更新订单状态；订单进入确认及之后状态时触发优惠券核销
func (s *OrderService) UpdateStatus(orderID uint, input UpdateOrderStatusInput) (*models.Order, error) {
	order, err := s.GetForAdmin(orderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	target := strings.ToLower(strings.TrimSpace(input.Status))
	if target != "" && target != order.Status {
		if !isTransitionAllowed(order.Status, target) {
			return nil, ErrOrderStatusInvalid
		}
		updates["status"] = target
	}
	if payment := strings.ToLower(strings.TrimSpace(input.PaymentStatus)); payment != "" {
		if !paymentStatuses[payment] {
			return nil, ErrPaymentStatusInvalid
		}
		if payment != order.PaymentStatus {
			updates["payment_status"] = payment
		}
	}
	if len(updates) == 0 {
		if target == "" && strings.TrimSpace(input.PaymentStatus) == "" {
			return nil, ErrOrderStatusInvalid
		}
		return order, nil
	}

	if err := s.orderRepo.UpdateFields(order.ID, updates); err != nil {
		return nil, err
	}
	updated, err := s.GetForAdmin(order.ID)
	if err != nil {
		return nil, err
	}
	if needsCouponRedemption(updated) {
		s.dispatchCouponRedemption(updated.ID)
	}
	return s.GetForAdmin(order.ID)
}

// Delete 删除订单
func (s *OrderService) Delete(orderID uint) error {
	if _, err := s.GetForAdmin(orderID); err != nil {
		return err
	}
	return s.orderRepo.Delete(orderID)
}

// RedeemOrderCoupon 核销订单上的优惠券，重复调用只生效一次
// 标记核销时间与券计数在同一事务内，任一失败整体回滚
func (s *OrderService) RedeemOrderCoupon(orderID uint) (*RedemptionResult, error) {
	order, err := s.GetForAdmin(orderID)
	if err != nil {
		return nil, err
	}
	if !needsCouponRedemption(order) {
		return nil, nil
	}

	var result *RedemptionResult
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		marked, err := s.orderRepo.WithTx(tx).MarkCouponRedeemed(order.ID, time.Now())
		if err != nil {
			return err
		}
		if !marked {
			return nil
		}
		result, err = s.couponService.ApplyInTx(tx, ApplyInput{Code: order.CouponCode, UserID: order.UserID})
		return err
	})
	if result != nil || err != nil {
		s.couponService.RecordApplyOutcome(result, err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *OrderService) dispatchCouponRedemption(orderID uint) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueCouponRedeem(queue.CouponRedeemPayload{OrderID: orderID}); err != nil {
			logger.Warnw("order_enqueue_coupon_redeem_failed", "order_id", orderID, "error", err)
		}
		return
	}
	if _, err := s.RedeemOrderCoupon(orderID); err != nil {
		if IsCouponRejection(err) {
			logger.Warnw("order_coupon_redeem_rejected", "order_id", orderID, "error", err)
			return
		}
		logger.Errorw("order_coupon_redeem_failed", "order_id", orderID, "error", err)
	}
}

func needsCouponRedemption(order *models.Order) bool {
	if order == nil || strings.TrimSpace(order.CouponCode) == "" || order.CouponRedeemedAt != nil {
		return false
	}
	switch order.Status {
	case constants.OrderStatusConfirmed, constants.OrderStatusShipped, constants.OrderStatusDelivered:
		return true
	default:
		return false
	}
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("SD%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
