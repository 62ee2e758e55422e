package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storedesk/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// ErrAdminMissing 回源时管理员已不存在
var ErrAdminMissing = errors.New("admin missing")

// AdminAuthState 管理员鉴权快照：JWT 校验只比对 token_version，不必每次查库
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	CachedAt     int64  `json:"cached_at"`
}

// NewAdminAuthState 从管理员记录生成快照
func NewAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		CachedAt:     time.Now().Unix(),
	}
}

// Accepts token 中的版本号与当前快照一致才放行
func (s *AdminAuthState) Accepts(tokenVersion uint64) bool {
	return s != nil && s.TokenVersion == tokenVersion
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// LoadAdminAuthState 读取快照，未命中时通过 load 回源并写回缓存
func LoadAdminAuthState(ctx context.Context, adminID uint, load func(id uint) (*models.Admin, error)) (*AdminAuthState, error) {
	if adminID == 0 {
		return nil, ErrAdminMissing
	}
	var state AdminAuthState
	err := GetOrLoadJSON(ctx, adminAuthStateKey(adminID), authStateCacheTTL, &state, func() (interface{}, error) {
		admin, err := load(adminID)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, ErrAdminMissing
		}
		return NewAdminAuthState(admin), nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// StoreAdminAuthState 主动写入快照（登录后预热）
func StoreAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// ForgetAdminAuthState 删除快照，下次请求回源
func ForgetAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
