package admin

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/storedesk/internal/constants"
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// ProductForm 商品表单（multipart），新图片通过 images[] 上传
type ProductForm struct {
	CategoryID     uint   `form:"category_id" binding:"required"`
	SubCategoryID  uint   `form:"sub_category_id" binding:"required"`
	Name           string `form:"name" binding:"required,max=200"`
	Description    string `form:"description"`
	Price          string `form:"price" binding:"required"`
	Stock          *int   `form:"stock" binding:"omitempty,min=0"`
	Status         string `form:"status" binding:"omitempty,oneof=active inactive"`
	ExistingImages string `form:"existing_images"`
}

// GetAdminProducts 商品列表
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		CategoryID:    handlershared.QueryUint(c, "category_id"),
		SubCategoryID: handlershared.QueryUint(c, "sub_category_id"),
		Search:        strings.TrimSpace(c.Query("search")),
		Status:        strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, products, page, pageSize, total)
}

// GetAdminProduct 商品详情
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondCatalogError(c, err, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	input, uploaded, ok := h.bindProductForm(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Create(input)
	if err != nil {
		h.discardUploads(c.Request.Context(), uploaded)
		respondCatalogError(c, err, "error.product_create_failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品，existing_images 之外的旧图片会被删除
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	input, uploaded, ok := h.bindProductForm(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.discardUploads(c.Request.Context(), uploaded)
		respondCatalogError(c, err, "error.product_update_failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品及其图片
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondCatalogError(c, err, "error.product_delete_failed")
		return
	}
	response.Success(c, nil)
}

// bindProductForm 解析表单并上传新图片，失败时已写入响应
func (h *Handler) bindProductForm(c *gin.Context) (service.ProductInput, []string, bool) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.product_invalid", nil)
		return service.ProductInput{}, nil, false
	}
	price, err := models.NewMoneyFromString(form.Price)
	if err != nil || price.IsNegative() {
		respondError(c, response.CodeBadRequest, "error.product_invalid", nil)
		return service.ProductInput{}, nil, false
	}
	images := make([]string, 0)
	if raw := strings.TrimSpace(form.ExistingImages); raw != "" {
		if err := json.Unmarshal([]byte(raw), &images); err != nil {
			respondError(c, response.CodeBadRequest, "error.product_invalid", nil)
			return service.ProductInput{}, nil, false
		}
	}

	files := formFiles(c, "images[]", "images")
	if len(images)+len(files) > h.ProductService.MaxImages() {
		respondError(c, response.CodeBadRequest, "error.product_image_limit", nil)
		return service.ProductInput{}, nil, false
	}
	uploaded := make([]string, 0, len(files))
	for _, file := range files {
		url, err := h.UploadService.SaveFile(c.Request.Context(), file, constants.UploadSceneProduct)
		if err != nil {
			h.discardUploads(c.Request.Context(), uploaded)
			respondCatalogError(c, err, "error.upload_failed")
			return service.ProductInput{}, nil, false
		}
		uploaded = append(uploaded, url)
	}

	return service.ProductInput{
		CategoryID:    form.CategoryID,
		SubCategoryID: form.SubCategoryID,
		Name:          form.Name,
		Description:   form.Description,
		Price:         price,
		Stock:         form.Stock,
		Images:        append(images, uploaded...),
		Status:        form.Status,
	}, uploaded, true
}

func (h *Handler) discardUploads(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := h.UploadService.Delete(ctx, url); err != nil {
			logger.Warnw("upload_discard_failed", "url", url, "error", err)
		}
	}
}

func formFiles(c *gin.Context, names ...string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	for _, name := range names {
		if files := form.File[name]; len(files) > 0 {
			return files
		}
	}
	return nil
}
