package models

import "time"

// OfferImage 首页活动图
type OfferImage struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                  // 主键
	Image        string     `gorm:"type:varchar(500);not null" json:"image"`               // 图片地址
	Description  string     `gorm:"type:varchar(500)" json:"description"`                  // 描述
	DisplayOrder int        `gorm:"not null;default:0;index" json:"display_order"`         // 展示顺序（升序）
	StartDate    *time.Time `gorm:"index" json:"start_date"`                               // 生效时间（为空不限）
	EndDate      *time.Time `gorm:"index" json:"end_date"`                                 // 失效时间（为空不限）
	Status       string     `gorm:"type:varchar(20);default:'active';index" json:"status"` // 状态
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (OfferImage) TableName() string {
	return "offer_images"
}
