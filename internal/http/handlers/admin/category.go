package admin

import (
	"strings"

	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=1000"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// GetAdminCategories 分类列表
func (h *Handler) GetAdminCategories(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	categories, total, err := h.CategoryService.List(repository.CategoryListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, categories, page, pageSize, total)
}

// GetAdminCategory 分类详情
func (h *Handler) GetAdminCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(id)
	if err != nil {
		respondCatalogError(c, err, "error.category_fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.category_invalid", nil)
		return
	}
	category, err := h.CategoryService.Create(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondCatalogError(c, err, "error.category_create_failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.category_invalid", nil)
		return
	}
	category, err := h.CategoryService.Update(id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondCatalogError(c, err, "error.category_update_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类，存在子分类时拒绝
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondCatalogError(c, err, "error.category_delete_failed")
		return
	}
	response.Success(c, nil)
}
