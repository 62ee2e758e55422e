package models

import "time"

// Product 商品表
type Product struct {
	ID            uint        `gorm:"primarykey" json:"id"`                                       // 主键
	CategoryID    uint        `gorm:"not null;index" json:"category_id"`                          // 分类ID
	SubCategoryID uint        `gorm:"not null;index" json:"sub_category_id"`                      // 子分类ID
	Name          string      `gorm:"type:varchar(200);not null;index" json:"name"`               // 名称
	Description   string      `gorm:"type:text" json:"description"`                               // 描述
	Price         Money       `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // 价格
	Stock         int         `gorm:"not null;default:0" json:"stock"`                            // 库存
	Images        StringArray `gorm:"type:json" json:"images"`                                    // 图片数组
	Status        string      `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 状态
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time   `json:"updated_at"`                                                 // 更新时间

	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`       // 分类信息
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_category,omitempty"` // 子分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
