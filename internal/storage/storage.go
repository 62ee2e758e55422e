package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/storedesk/internal/config"
)

// ErrNotOwned URL 不属于当前存储
var ErrNotOwned = errors.New("object not owned by storage")

// Storage 上传文件的对象存储
type Storage interface {
	// Put 写入对象并返回可访问地址
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// Delete 按访问地址删除对象
	Delete(ctx context.Context, url string) error
	// Owns 判断访问地址是否由当前存储生成
	Owns(url string) bool
}

// New 按配置创建存储
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURL), nil
	default:
		return nil, errors.New("unsupported storage driver: " + cfg.Driver)
	}
}
