package models

import "time"

// CouponUsage 用户优惠券使用台账（每个用户每张券一条）
type CouponUsage struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                        // 主键
	UserID     uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_user_coupon,priority:1" json:"user_id"` // 用户ID
	CouponID   uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_user_coupon,priority:2;index" json:"coupon_id"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"` // 已使用次数
	LastUsedAt time.Time `json:"last_used_at"`                          // 最近使用时间
	CreatedAt  time.Time `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
