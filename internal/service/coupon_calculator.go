package service

import (
	"github.com/storedesk/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount 计算折扣金额与折后金额
// raw = orderAmount * percentage / 100，设置了封顶时取 min(raw, maxDiscount)
func ComputeDiscount(percentage decimal.Decimal, orderAmount models.Money, maxDiscount *models.Money) (models.Money, models.Money) {
	raw := orderAmount.Decimal.Mul(percentage).Div(hundred)
	if maxDiscount != nil && raw.GreaterThan(maxDiscount.Decimal) {
		raw = maxDiscount.Decimal
	}
	discount := models.NewMoneyFromDecimal(raw)
	final := models.NewMoneyFromDecimal(orderAmount.Decimal.Sub(discount.Decimal))
	return discount, final
}
