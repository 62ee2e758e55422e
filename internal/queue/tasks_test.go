package queue

import (
	"testing"

	"github.com/storedesk/internal/config"
)

func TestCouponRedeemTaskPayload(t *testing.T) {
	task, err := NewCouponRedeemTask(CouponRedeemPayload{OrderID: 42})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != "coupon:redeem" {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseCouponRedeemPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != 42 {
		t.Fatalf("unexpected order id: %d", payload.OrderID)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if err := client.EnqueueCouponRedeem(CouponRedeemPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] == 0 || cfg.Queues[DefaultQueue] == 0 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
