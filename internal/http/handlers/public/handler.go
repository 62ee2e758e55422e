package public

import (
	"github.com/storedesk/internal/provider"
)

// Handler 前台接口处理器
type Handler struct {
	*provider.Container
}

// New 创建前台 Handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
