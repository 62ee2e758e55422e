package models

import (
	"errors"
	"strings"

	"github.com/storedesk/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitDefaultAdmin 初始化默认管理员账号（幂等，未配置密码时跳过）
func InitDefaultAdmin(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		logger.Warnw("default_admin_bootstrap_skipped", "reason", "credentials_not_configured")
		return nil
	}

	var existing Admin
	err := DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		if !existing.IsSuper {
			if err := DB.Model(&Admin{}).Where("id = ?", existing.ID).Update("is_super", true).Error; err != nil {
				logger.Warnw("ensure_default_admin_super_failed", "username", username, "error", err)
			}
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}
	logger.Infow("default_admin_created", "username", username, "admin_id", admin.ID)
	return nil
}
