package models

import "time"

// Order 订单表
type Order struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	OrderNo          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`                 // 订单编号
	UserID           uint       `gorm:"index;not null" json:"user_id"`                                         // 用户ID
	Address          string     `gorm:"type:varchar(1000)" json:"address"`                                     // 收货地址
	Status           string     `gorm:"type:varchar(20);index;not null" json:"status"`                         // 订单状态
	PaymentStatus    string     `gorm:"type:varchar(20);index;not null" json:"payment_status"`                 // 支付状态
	OriginalAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"`          // 原始金额
	CouponCode       string     `gorm:"type:varchar(64);index" json:"coupon_code,omitempty"`                   // 使用的优惠码
	DiscountAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`          // 优惠金额
	TotalAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`             // 实付金额
	CouponRedeemedAt *time.Time `gorm:"index" json:"coupon_redeemed_at"`                                       // 优惠券核销时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                               // 更新时间

	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`                             // 订单ID
	ProductID  uint      `gorm:"index;not null" json:"product_id"`                           // 商品ID
	Title      string    `gorm:"type:varchar(200)" json:"title"`                             // 下单时商品名称
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`    // 单价
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`                         // 数量
	TotalPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`   // 小计
	CreatedAt  time.Time `json:"created_at"`                                                 // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
