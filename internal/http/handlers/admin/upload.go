package admin

import (
	"github.com/storedesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadFile 上传文件，scene 决定存储目录
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_file_required", nil)
		return
	}
	url, err := h.UploadService.SaveFile(c.Request.Context(), file, c.PostForm("scene"))
	if err != nil {
		respondCatalogError(c, err, "error.upload_failed")
		return
	}
	response.Success(c, gin.H{
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
	})
}
