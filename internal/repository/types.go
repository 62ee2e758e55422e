package repository

import "time"

// CouponListFilter 优惠券列表筛选
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// CategoryListFilter 分类列表筛选
type CategoryListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// SubCategoryListFilter 子分类列表筛选
type SubCategoryListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Status     string
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page          int
	PageSize      int
	CategoryID    uint
	SubCategoryID uint
	Search        string
	Status        string
	WithCategory  bool
}

// OfferImageListFilter 活动图列表筛选
type OfferImageListFilter struct {
	Page      int
	PageSize  int
	Status    string
	OnlyValid bool
	Now       time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}
