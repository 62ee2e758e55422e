package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray 字符串数组类型，用于存储 images 等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	if len(raw) == 0 {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// Category 商品分类表
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                  // 主键
	Name        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`    // 名称（唯一）
	Description string    `gorm:"type:varchar(1000)" json:"description"`                 // 描述
	Status      string    `gorm:"type:varchar(20);default:'active';index" json:"status"` // 状态 active/inactive
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// SubCategory 商品子分类表
type SubCategory struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                  // 主键
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`                     // 所属分类
	Name        string    `gorm:"type:varchar(120);not null" json:"name"`                // 名称
	Description string    `gorm:"type:varchar(1000)" json:"description"`                 // 描述
	Status      string    `gorm:"type:varchar(20);default:'active';index" json:"status"` // 状态
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                            // 更新时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (SubCategory) TableName() string {
	return "sub_categories"
}
