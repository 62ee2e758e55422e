package admin

import (
	"strings"

	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// SubCategoryRequest 子分类请求
type SubCategoryRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=1000"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r SubCategoryRequest) toInput() service.SubCategoryInput {
	return service.SubCategoryInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
	}
}

// GetAdminSubCategories 子分类列表，可按 category_id 过滤
func (h *Handler) GetAdminSubCategories(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.SubCategoryService.List(repository.SubCategoryListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: handlershared.QueryUint(c, "category_id"),
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.subcategory_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, items, page, pageSize, total)
}

// GetAdminSubCategory 子分类详情
func (h *Handler) GetAdminSubCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.SubCategoryService.Get(id)
	if err != nil {
		respondCatalogError(c, err, "error.subcategory_fetch_failed")
		return
	}
	response.Success(c, item)
}

// CreateSubCategory 创建子分类
func (h *Handler) CreateSubCategory(c *gin.Context) {
	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.subcategory_invalid", nil)
		return
	}
	item, err := h.SubCategoryService.Create(req.toInput())
	if err != nil {
		respondCatalogError(c, err, "error.subcategory_create_failed")
		return
	}
	response.Success(c, item)
}

// UpdateSubCategory 更新子分类
func (h *Handler) UpdateSubCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.subcategory_invalid", nil)
		return
	}
	item, err := h.SubCategoryService.Update(id, req.toInput())
	if err != nil {
		respondCatalogError(c, err, "error.subcategory_update_failed")
		return
	}
	response.Success(c, item)
}

// DeleteSubCategory 删除子分类及其商品
func (h *Handler) DeleteSubCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.SubCategoryService.Delete(id); err != nil {
		respondCatalogError(c, err, "error.subcategory_delete_failed")
		return
	}
	response.Success(c, nil)
}
