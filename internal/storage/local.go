package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage 本地磁盘存储，文件通过静态路由访问
type LocalStorage struct {
	root      string
	publicURL string
}

// NewLocalStorage 创建本地存储
func NewLocalStorage(root, publicURL string) *LocalStorage {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "uploads"
	}
	publicURL = strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if publicURL == "" {
		publicURL = "/uploads"
	}
	return &LocalStorage{root: root, publicURL: publicURL}
}

// Root 本地根目录
func (s *LocalStorage) Root() string {
	return s.root
}

// Put 写入文件
func (s *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, body); err != nil {
		_ = dst.Close()
		_ = os.Remove(fullPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return s.publicURL + "/" + cleaned, nil
}

// Delete 删除文件，文件不存在视为成功
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	if !s.Owns(url) {
		return ErrNotOwned
	}
	cleaned, err := cleanKey(strings.TrimPrefix(url, s.publicURL+"/"))
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Owns 判断地址是否位于本地访问前缀下
func (s *LocalStorage) Owns(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), s.publicURL+"/")
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", errors.New("invalid object key")
	}
	return cleaned, nil
}
