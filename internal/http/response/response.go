package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey 请求 ID 在 gin.Context 中的键
const RequestIDKey = "request_id"

// Envelope 统一响应信封，HTTP 状态码恒为 200，业务结果看 status_code
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 按总数计算总页数；pageSize 为 0 表示不分页，整体算一页
func NewPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	switch {
	case pageSize > 0:
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	case total > 0:
		p.TotalPage = 1
	}
	return p
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: &pagination})
}

// Error 错误响应，data 中带上 request_id 方便排查
func Error(c *gin.Context, code int, msg string) {
	var data interface{}
	if id := c.GetString(RequestIDKey); id != "" {
		data = gin.H{RequestIDKey: id}
	}
	write(c, Envelope{StatusCode: code, Msg: msg, Data: data})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

func write(c *gin.Context, body Envelope) {
	c.JSON(http.StatusOK, body)
}
