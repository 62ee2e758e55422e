package queue

import (
	"github.com/storedesk/internal/constants"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	// TaskCouponRedeem 订单确认后的优惠券核销任务
	TaskCouponRedeem = constants.TaskCouponRedeem
	// TaskOfferExpire 活动图过期巡检任务
	TaskOfferExpire = constants.TaskOfferExpire
)

// CouponRedeemPayload 优惠券核销任务载荷
type CouponRedeemPayload struct {
	OrderID uint `json:"order_id"`
}

// NewCouponRedeemTask 创建优惠券核销任务
func NewCouponRedeemTask(payload CouponRedeemPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCouponRedeem, body), nil
}

// ParseCouponRedeemPayload 解析优惠券核销任务载荷
func ParseCouponRedeemPayload(body []byte) (CouponRedeemPayload, error) {
	var payload CouponRedeemPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// NewOfferExpireTask 创建活动图过期巡检任务
func NewOfferExpireTask() *asynq.Task {
	return asynq.NewTask(TaskOfferExpire, nil)
}
