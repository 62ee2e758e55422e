package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

func resourcePolicies(base string, actions ...string) []Policy {
	policies := make([]Policy, 0, len(actions)*2)
	for _, action := range actions {
		policies = append(policies,
			Policy{Object: base, Action: action},
			Policy{Object: base + "/:id", Action: action},
		)
	}
	return policies
}

// BuiltinRoleSeeds 系统预置角色
func BuiltinRoleSeeds() []RoleSeed {
	catalog := append(resourcePolicies("/admin/categories", "*"), resourcePolicies("/admin/subcategories", "*")...)
	catalog = append(catalog, resourcePolicies("/admin/products", "*")...)
	catalog = append(catalog, resourcePolicies("/admin/offer-images", "*")...)
	catalog = append(catalog, Policy{Object: "/admin/upload", Action: "POST"})

	orders := resourcePolicies("/admin/orders", "GET", "DELETE")
	orders = append(orders, Policy{Object: "/admin/orders/:id/status", Action: "PATCH"})

	coupons := resourcePolicies("/admin/coupons", "*")
	coupons = append(coupons, Policy{Object: "/admin/coupons/:id/stats", Action: "GET"})

	return []RoleSeed{
		{
			Role:     "readonly_auditor",
			Policies: []Policy{{Object: "/admin/*", Action: "GET"}},
		},
		{Role: "catalog_manager", Inherits: []string{"readonly_auditor"}, Policies: catalog},
		{Role: "order_manager", Inherits: []string{"readonly_auditor"}, Policies: orders},
		{Role: "coupon_manager", Inherits: []string{"readonly_auditor"}, Policies: coupons},
	}
}

// BootstrapBuiltinRoles 写入预置角色策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
	}
	return nil
}
