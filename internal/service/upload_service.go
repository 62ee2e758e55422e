package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/storage"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var allowedUploadScenes = map[string]struct{}{
	"product": {},
	"offer":   {},
	"common":  {},
}

// UploadService 文件上传服务
type UploadService struct {
	cfg   config.UploadConfig
	store storage.Storage
	now   func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg config.UploadConfig, store storage.Storage) *UploadService {
	return &UploadService{cfg: cfg, store: store, now: time.Now}
}

// SaveFile 校验并保存上传的文件，返回访问地址
func (s *UploadService) SaveFile(ctx context.Context, file *multipart.FileHeader, scene string) (string, error) {
	if file == nil {
		return "", ErrUploadTypeNotAllowed
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return "", ErrUploadTooLarge
	}
	normalizedScene, err := normalizeUploadScene(scene)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return "", ErrUploadTypeNotAllowed
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(buffer[:n])
	if !s.isAllowedType(contentType) {
		return "", ErrUploadTypeNotAllowed
	}

	if strings.HasPrefix(contentType, "image/") {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		imgCfg, _, err := image.DecodeConfig(src)
		if err != nil {
			return "", ErrUploadInvalidImage
		}
		if s.cfg.MaxWidth > 0 && imgCfg.Width > s.cfg.MaxWidth {
			return "", ErrUploadImageTooLarge
		}
		if s.cfg.MaxHeight > 0 && imgCfg.Height > s.cfg.MaxHeight {
			return "", ErrUploadImageTooLarge
		}
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := s.now()
	key := fmt.Sprintf("%s/%s/%s/%s%s", normalizedScene, now.Format("2006"), now.Format("01"), uuid.New().String(), ext)
	return s.store.Put(ctx, key, src, file.Size, contentType)
}

// Delete 删除已上传文件，外部地址忽略
func (s *UploadService) Delete(ctx context.Context, url string) error {
	if s.store == nil || !s.store.Owns(url) {
		return nil
	}
	return s.store.Delete(ctx, url)
}

func (s *UploadService) isAllowedType(contentType string) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.cfg.AllowedTypes {
		if strings.EqualFold(contentType, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

func normalizeUploadScene(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "common", nil
	}
	if _, ok := allowedUploadScenes[value]; ok {
		return value, nil
	}
	return "", ErrUploadSceneNotAllowed
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if ext == normalized {
			return true
		}
	}
	return false
}
