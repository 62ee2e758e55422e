package models

import "time"

// User 顾客表（由前台写入，后台只读）
type User struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`     // 邮箱
	DisplayName string    `gorm:"type:varchar(120);default:''" json:"display_name"`        // 昵称
	Phone       string    `gorm:"type:varchar(40)" json:"phone,omitempty"`                 // 手机号
	Status      string    `gorm:"type:varchar(20);default:'active';index" json:"status"`   // 账号状态
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
