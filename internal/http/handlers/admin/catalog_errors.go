package admin

import (
	"errors"

	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
)

var catalogErrorKeys = []struct {
	target error
	code   int
	key    string
}{
	{service.ErrCategoryInvalid, response.CodeBadRequest, "error.category_invalid"},
	{service.ErrCategoryNotFound, response.CodeNotFound, "error.category_not_found"},
	{service.ErrCategoryNameExists, response.CodeBadRequest, "error.category_name_exists"},
	{service.ErrCategoryInUse, response.CodeBadRequest, "error.category_in_use"},
	{service.ErrSubCategoryInvalid, response.CodeBadRequest, "error.subcategory_invalid"},
	{service.ErrSubCategoryNotFound, response.CodeNotFound, "error.subcategory_not_found"},
	{service.ErrProductInvalid, response.CodeBadRequest, "error.product_invalid"},
	{service.ErrProductNotFound, response.CodeNotFound, "error.product_not_found"},
	{service.ErrProductImageLimit, response.CodeBadRequest, "error.product_image_limit"},
	{service.ErrOfferInvalid, response.CodeBadRequest, "error.offer_invalid"},
	{service.ErrOfferNotFound, response.CodeNotFound, "error.offer_not_found"},
	{service.ErrUploadTooLarge, response.CodeBadRequest, "error.upload_too_large"},
	{service.ErrUploadTypeNotAllowed, response.CodeBadRequest, "error.upload_type_not_allowed"},
	{service.ErrUploadInvalidImage, response.CodeBadRequest, "error.upload_invalid_image"},
	{service.ErrUploadImageTooLarge, response.CodeBadRequest, "error.upload_image_too_large"},
	{service.ErrUploadSceneNotAllowed, response.CodeBadRequest, "error.upload_scene_not_allowed"},
}

// respondCatalogError 目录、活动图与上传相关错误映射
func respondCatalogError(c *gin.Context, err error, fallbackKey string) {
	for _, item := range catalogErrorKeys {
		if errors.Is(err, item.target) {
			respondError(c, item.code, item.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}
