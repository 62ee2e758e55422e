package admin

import (
	"strings"

	"github.com/storedesk/internal/constants"
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/repository"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// OfferImageForm 活动图表单（multipart），image 为上传文件
type OfferImageForm struct {
	Description  string `form:"description" binding:"max=500"`
	DisplayOrder *int   `form:"display_order"`
	StartDate    string `form:"start_date"`
	EndDate      string `form:"end_date"`
	Status       string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// GetAdminOfferImages 活动图列表
func (h *Handler) GetAdminOfferImages(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.OfferImageService.ListAdmin(repository.OfferImageListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.offer_fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, items, page, pageSize, total)
}

// GetAdminOfferImage 活动图详情
func (h *Handler) GetAdminOfferImage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.OfferImageService.Get(id)
	if err != nil {
		respondCatalogError(c, err, "error.offer_fetch_failed")
		return
	}
	response.Success(c, item)
}

// CreateOfferImage 创建活动图，必须上传图片
func (h *Handler) CreateOfferImage(c *gin.Context) {
	input, ok := h.bindOfferImageForm(c, true)
	if !ok {
		return
	}
	item, err := h.OfferImageService.Create(c.Request.Context(), input)
	if err != nil {
		h.discardUploads(c.Request.Context(), []string{input.Image})
		respondCatalogError(c, err, "error.offer_create_failed")
		return
	}
	response.Success(c, item)
}

// UpdateOfferImage 更新活动图，未上传新图时保留原图
func (h *Handler) UpdateOfferImage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	input, ok := h.bindOfferImageForm(c, false)
	if !ok {
		return
	}
	item, err := h.OfferImageService.Update(c.Request.Context(), id, input)
	if err != nil {
		if input.Image != "" {
			h.discardUploads(c.Request.Context(), []string{input.Image})
		}
		respondCatalogError(c, err, "error.offer_update_failed")
		return
	}
	response.Success(c, item)
}

// DeleteOfferImage 删除活动图
func (h *Handler) DeleteOfferImage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OfferImageService.Delete(c.Request.Context(), id); err != nil {
		respondCatalogError(c, err, "error.offer_delete_failed")
		return
	}
	response.Success(c, nil)
}

func (h *Handler) bindOfferImageForm(c *gin.Context, requireImage bool) (service.OfferImageInput, bool) {
	var form OfferImageForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.offer_invalid", nil)
		return service.OfferImageInput{}, false
	}
	startDate, ok := parseDateParam(form.StartDate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return service.OfferImageInput{}, false
	}
	endDate, ok := parseDateParam(form.EndDate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return service.OfferImageInput{}, false
	}

	input := service.OfferImageInput{
		Description:  form.Description,
		DisplayOrder: form.DisplayOrder,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       form.Status,
	}
	file, err := c.FormFile("image")
	if err != nil {
		if requireImage {
			respondError(c, response.CodeBadRequest, "error.offer_image_required", nil)
			return service.OfferImageInput{}, false
		}
		return input, true
	}
	url, err := h.UploadService.SaveFile(c.Request.Context(), file, constants.UploadSceneOffer)
	if err != nil {
		respondCatalogError(c, err, "error.upload_failed")
		return service.OfferImageInput{}, false
	}
	input.Image = url
	return input, true
}
