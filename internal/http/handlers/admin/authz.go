package admin

import (
	"errors"
	"strings"

	"github.com/storedesk/internal/authz"
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/logger"

	"github.com/gin-gonic/gin"
)

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 角色策略列表
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondAuthzError(c, err, "error.authz_fetch_failed")
		return
	}
	response.Success(c, policies)
}

// GetAuthzAdminRoles 管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondAuthzError(c, err, "error.authz_fetch_failed")
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	operatorID, ok := handlershared.GetAdminID(c)
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondAuthzError(c, err, "error.authz_update_failed")
		return
	}
	logger.Infow("authz_admin_roles_updated",
		"operator_id", operatorID,
		"admin_id", id,
		"roles", strings.Join(req.Roles, ","),
	)
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

func respondAuthzError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, authz.ErrUnknownRole):
		respondError(c, response.CodeNotFound, "error.authz_role_not_found", nil)
	case errors.Is(err, authz.ErrRoleRequired), errors.Is(err, authz.ErrAdminRequired):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
