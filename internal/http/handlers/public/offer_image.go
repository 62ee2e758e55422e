package public

import (
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetOfferImages 前台活动图列表
func (h *Handler) GetOfferImages(c *gin.Context) {
	list, err := h.OfferImageService.ListPublic(c.Request.Context())
	if err != nil {
		handlershared.RespondError(c, response.CodeInternal, "error.offer_fetch_failed", err)
		return
	}
	response.Success(c, list)
}
