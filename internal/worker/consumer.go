package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/queue"
	"github.com/storedesk/internal/service"

	"github.com/hibiken/asynq"
)

// CouponRedeemer 订单优惠券核销
type CouponRedeemer interface {
	RedeemOrderCoupon(orderID uint) (*service.RedemptionResult, error)
}

// OfferExpirer 活动图过期巡检
type OfferExpirer interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	redeemer CouponRedeemer
	offers   OfferExpirer
}

// NewConsumer 创建消费者
func NewConsumer(redeemer CouponRedeemer, offers OfferExpirer) *Consumer {
	return &Consumer{redeemer: redeemer, offers: offers}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponRedeem, c.handleCouponRedeem)
	mux.HandleFunc(queue.TaskOfferExpire, c.handleOfferExpire)
}

func (c *Consumer) handleCouponRedeem(_ context.Context, task *asynq.Task) error {
	if c.redeemer == nil {
		logger.Warnw("worker_coupon_redeem_skip_service_nil")
		return nil
	}
	payload, err := queue.ParseCouponRedeemPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_coupon_redeem_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_coupon_redeem_skip_invalid_payload")
		return nil
	}

	result, err := c.redeemer.RedeemOrderCoupon(payload.OrderID)
	switch {
	case err == nil:
		if result == nil {
			logger.Debugw("worker_coupon_redeem_skip_done", "order_id", payload.OrderID)
			return nil
		}
		logger.Infow("worker_coupon_redeemed",
			"order_id", payload.OrderID,
			"coupon_code", result.Code,
			"user_id", result.UserID,
			"usage_count", result.UsageCount,
		)
		return nil
	case errors.Is(err, service.ErrOrderNotFound):
		logger.Debugw("worker_coupon_redeem_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	case service.IsCouponRejection(err):
		logger.Warnw("worker_coupon_redeem_rejected", "order_id", payload.OrderID, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		logger.Warnw("worker_coupon_redeem_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
}

func (c *Consumer) handleOfferExpire(ctx context.Context, _ *asynq.Task) error {
	if c.offers == nil {
		return nil
	}
	affected, err := c.offers.DeactivateExpired(ctx)
	if err != nil {
		logger.Warnw("worker_offer_expire_failed", "error", err)
		return err
	}
	if affected > 0 {
		logger.Infow("worker_offer_expired", "count", affected)
	}
	return nil
}
