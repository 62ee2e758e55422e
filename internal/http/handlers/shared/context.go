package shared

import (
	"strconv"
	"strings"

	"github.com/storedesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AdminIDKey 鉴权中间件写入的管理员 ID
const AdminIDKey = "admin_id"

// GetAdminID 从上下文读取当前管理员 ID，失败时已写入响应。
func GetAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(AdminIDKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

// ParseIDParam 解析路径中的数字 ID，失败时已写入响应。
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// QueryUint 读取可选的数字查询参数，非法值视为未传。
func QueryUint(c *gin.Context, name string) uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
