package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon 优惠券表
type Coupon struct {
	ID                 uint            `gorm:"primarykey" json:"id"`                                                // 主键
	Code               string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`                   // 优惠码（统一大写）
	Description        string          `gorm:"type:varchar(500)" json:"description"`                                // 描述
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`     // 折扣百分比 [0,100]
	MinOrderAmount     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`       // 最低订单金额
	MaxDiscountAmount  *Money          `gorm:"type:decimal(20,2)" json:"max_discount_amount"`                       // 最大优惠金额（为空表示不封顶）
	ExpiryDate         time.Time       `gorm:"not null;index" json:"expiry_date"`                                   // 过期时间
	UsageLimitPerUser  int             `gorm:"not null;default:1" json:"usage_limit_per_user"`                      // 单用户可用次数
	TotalUsageLimit    *int            `json:"total_usage_limit"`                                                   // 总可用次数（为空表示不限）
	TotalUsedCount     int             `gorm:"not null;default:0" json:"total_used_count"`                          // 已使用总次数
	IsActive           bool            `gorm:"not null;default:true;index" json:"is_active"`                        // 是否启用
	CreatedAt          time.Time       `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt          time.Time       `json:"updated_at"`                                                          // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired 判断优惠券在给定时间是否已过期（严格晚于过期时间）
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate)
}

// GlobalLimitReached 判断总次数是否已用尽
func (c *Coupon) GlobalLimitReached() bool {
	return c.TotalUsageLimit != nil && c.TotalUsedCount >= *c.TotalUsageLimit
}
