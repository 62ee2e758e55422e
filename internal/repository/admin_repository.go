package repository

import (
	"errors"
	"time"

	"github.com/storedesk/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	Create(admin *models.Admin) error
	TouchLastLogin(id uint, at time.Time) error
	BumpTokenVersion(id uint, passwordHash string) (uint64, error)
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) first(query *gorm.DB) (*models.Admin, error) {
	var admin models.Admin
	if err := query.First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return r.first(r.db.Where("username = ?", username))
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	return r.first(r.db.Where("id = ?", id))
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// TouchLastLogin 只更新最近登录时间，避免覆盖并发修改的密码与版本号
func (r *GormAdminRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// BumpTokenVersion 更新密码并递增 token_version，使已签发的 Token 全部失效
func (r *GormAdminRepository) BumpTokenVersion(id uint, passwordHash string) (uint64, error) {
	var version uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"token_version": gorm.Expr("token_version + ?", 1),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var versions []uint64
		if err := tx.Model(&models.Admin{}).Where("id = ?", id).Pluck("token_version", &versions).Error; err != nil {
			return err
		}
		if len(versions) == 0 {
			return gorm.ErrRecordNotFound
		}
		version = versions[0]
		return nil
	})
	return version, err
}
