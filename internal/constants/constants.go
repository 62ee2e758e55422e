package constants

// 通用启用状态
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 上传场景
const (
	UploadSceneProduct = "product"
	UploadSceneOffer   = "offer"
	UploadSceneCommon  = "common"
)

// 队列与任务
const (
	QueueDefault     = "default"
	QueueCritical    = "critical"
	TaskCouponRedeem = "coupon:redeem"
	TaskOfferExpire  = "offer:expire"
)

// 事件主题
const (
	EventCouponRedeemed = "coupon.redeemed"
)
