package service

import (
	"errors"
	"testing"

	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/queue"
	"github.com/storedesk/internal/repository"

	"github.com/shopspring/decimal"
)

type fakeRedeemQueue struct {
	enabled  bool
	payloads []queue.CouponRedeemPayload
}

func (f *fakeRedeemQueue) Enabled() bool { return f.enabled }

func (f *fakeRedeemQueue) EnqueueCouponRedeem(payload queue.CouponRedeemPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type orderTestEnv struct {
	*couponTestEnv
	orders  *OrderService
	queue   *fakeRedeemQueue
	product *models.Product
	user    *models.User
}

func newOrderTestEnv(t *testing.T, queueEnabled bool) *orderTestEnv {
	t.Helper()
	base := newCouponTestEnv(t)
	categoryRepo := repository.NewCategoryRepository(base.db)
	subRepo := repository.NewSubCategoryRepository(base.db)
	productRepo := repository.NewProductRepository(base.db)

	category := &models.Category{Name: "Shoes"}
	if err := categoryRepo.Create(category); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	sub := &models.SubCategory{CategoryID: category.ID, Name: "Running"}
	if err := subRepo.Create(sub); err != nil {
		t.Fatalf("create subcategory failed: %v", err)
	}
	product := &models.Product{CategoryID: category.ID, SubCategoryID: sub.ID, Name: "Runner", Price: models.MustMoney("250")}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	fq := &fakeRedeemQueue{enabled: queueEnabled}
	return &orderTestEnv{
		couponTestEnv: base,
		orders:        NewOrderService(repository.NewOrderRepository(base.db), productRepo, base.svc, fq),
		queue:         fq,
		product:       product,
		user:          base.createUser(t, "buyer@example.com", "Buyer"),
	}
}

func (env *orderTestEnv) placeOrder(t *testing.T, code string) *models.Order {
	t.Helper()
	order, err := env.orders.Create(CreateOrderInput{
		UserID:     env.user.ID,
		Address:    "1 Main St",
		Items:      []CreateOrderItem{{ProductID: env.product.ID, Quantity: 2}},
		CouponCode: code,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreateAppliesQuote(t *testing.T) {
	env := newOrderTestEnv(t, false)
	env.createCoupon(t, CreateCouponInput{Code: "SAVE20", DiscountPercentage: decimal.NewFromInt(20)})

	order := env.placeOrder(t, "save20")
	if order.OriginalAmount.String() != "500.00" || order.DiscountAmount.String() != "100.00" || order.TotalAmount.String() != "400.00" {
		t.Fatalf("unexpected amounts: %s %s %s", order.OriginalAmount, order.DiscountAmount, order.TotalAmount)
	}
	if order.CouponCode != "SAVE20" || order.Status != "pending" || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.CouponRedeemedAt != nil {
		t.Fatalf("coupon must not be redeemed before confirmation")
	}
}

func TestOrderConfirmRedeemsCouponInlineOnce(t *testing.T) {
	env := newOrderTestEnv(t, false)
	coupon := env.createCoupon(t, CreateCouponInput{Code: "ONCE", DiscountPercentage: decimal.NewFromInt(10), UsageLimitPerUser: intPtr(5)})
	order := env.placeOrder(t, "ONCE")

	confirmed, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "confirmed"})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.CouponRedeemedAt == nil {
		t.Fatalf("expected coupon redeemed on confirmation")
	}
	if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "shipped"}); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if result, err := env.orders.RedeemOrderCoupon(order.ID); err != nil || result != nil {
		t.Fatalf("repeat redemption should be a noop: %+v %v", result, err)
	}

	stored, err := env.coupons.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.TotalUsedCount != 1 {
		t.Fatalf("expected exactly one redemption, got %d", stored.TotalUsedCount)
	}
}

func TestOrderConfirmEnqueuesWhenQueueEnabled(t *testing.T) {
	env := newOrderTestEnv(t, true)
	env.createCoupon(t, CreateCouponInput{Code: "QUEUED", DiscountPercentage: decimal.NewFromInt(10)})
	order := env.placeOrder(t, "QUEUED")
	plain := env.placeOrder(t, "")

	if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "confirmed"}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := env.orders.UpdateStatus(plain.ID, UpdateOrderStatusInput{Status: "confirmed"}); err != nil {
		t.Fatalf("confirm plain failed: %v", err)
	}
	if len(env.queue.payloads) != 1 || env.queue.payloads[0].OrderID != order.ID {
		t.Fatalf("expected single redeem task, got %+v", env.queue.payloads)
	}

	result, err := env.orders.RedeemOrderCoupon(order.ID)
	if err != nil {
		t.Fatalf("worker redemption failed: %v", err)
	}
	if result == nil || result.UsageCount != 1 {
		t.Fatalf("unexpected redemption: %+v", result)
	}
}

func TestOrderRedeemRollsBackOnLimit(t *testing.T) {
	env := newOrderTestEnv(t, true)
	env.createCoupon(t, CreateCouponInput{Code: "SINGLE", DiscountPercentage: decimal.NewFromInt(10)})
	first := env.placeOrder(t, "SINGLE")
	second := env.placeOrder(t, "SINGLE")

	for _, order := range []*models.Order{first, second} {
		if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "confirmed"}); err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
	}
	if _, err := env.orders.RedeemOrderCoupon(first.ID); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := env.orders.RedeemOrderCoupon(second.ID); !errors.Is(err, ErrCouponPerUserLimit) {
		t.Fatalf("expected per user limit, got %v", err)
	}
	reloaded, err := env.orders.GetForAdmin(second.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.CouponRedeemedAt != nil {
		t.Fatalf("failed redemption must roll back the redeemed marker")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	env := newOrderTestEnv(t, false)
	order := env.placeOrder(t, "")

	if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "delivered"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{PaymentStatus: "bogus"}); !errors.Is(err, ErrPaymentStatusInvalid) {
		t.Fatalf("expected invalid payment status, got %v", err)
	}
	updated, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "cancelled", PaymentStatus: "refunded"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if updated.Status != "cancelled" || updated.PaymentStatus != "refunded" {
		t.Fatalf("unexpected order: %+v", updated)
	}
	if _, err := env.orders.UpdateStatus(order.ID, UpdateOrderStatusInput{Status: "confirmed"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("cancelled order must be final, got %v", err)
	}

	if err := env.orders.Delete(order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.orders.GetForAdmin(order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
