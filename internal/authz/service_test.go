package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRolesListed(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := []string{"role:catalog_manager", "role:coupon_manager", "role:order_manager", "role:readonly_auditor"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Fatalf("roles want %v got %v", want, roles)
	}
}

func TestCouponManagerPermissions(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(7, []string{"coupon_manager"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj   string
		act   string
		allow bool
	}{
		{"/api/v1/admin/coupons", "post", true},
		{"/api/v1/admin/coupons/12", "DELETE", true},
		{"/api/v1/admin/coupons/12/stats", "GET", true},
		{"/api/v1/admin/orders", "GET", true},
		{"/api/v1/admin/orders/3/status", "PATCH", false},
		{"/api/v1/admin/products", "POST", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(7, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.act, tc.obj, err)
		}
		if allow != tc.allow {
			t.Fatalf("%s %s want %v got %v", tc.act, tc.obj, tc.allow, allow)
		}
	}
}

func TestSetAdminRolesOverrideAndReject(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(2, []string{"order_manager"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"role:catalog_manager"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:catalog_manager" {
		t.Fatalf("roles want [role:catalog_manager] got %v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"root"}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("want unknown role got %v", err)
	}
	if err := svc.SetAdminRoles(0, nil); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("want admin required got %v", err)
	}
	roles, _ = svc.GetAdminRoles(2)
	if len(roles) != 1 {
		t.Fatalf("rejected update must keep roles, got %v", roles)
	}
}

func TestAdminWithoutRolesDenied(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	allow, err := svc.EnforceAdmin(99, "/api/v1/admin/coupons", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("admin without roles must be denied")
	}
}

func TestGetRolePolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	policies, err := svc.GetRolePolicies("readonly_auditor")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/*" || policies[0].Action != "GET" {
		t.Fatalf("unexpected policies: %+v", policies)
	}
	if _, err := svc.GetRolePolicies("ghost"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("want unknown role got %v", err)
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeObject("/api/v1/admin/orders"); got != "/admin/orders" {
		t.Fatalf("normalize object got %s", got)
	}
	if got := NormalizeObject("/api/v1"); got != "/" {
		t.Fatalf("normalize root got %s", got)
	}
	if got, _ := NormalizeRole(" coupon manager "); got != "role:coupon_manager" {
		t.Fatalf("normalize role got %s", got)
	}
	if _, err := NormalizeRole("role:"); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("want role required got %v", err)
	}
}
