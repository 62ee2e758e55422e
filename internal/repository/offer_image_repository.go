package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/storedesk/internal/constants"
	"github.com/storedesk/internal/models"

	"gorm.io/gorm"
)

// OfferImageRepository 活动图数据访问接口
type OfferImageRepository interface {
	List(filter OfferImageListFilter) ([]models.OfferImage, int64, error)
	GetByID(id uint) (*models.OfferImage, error)
	Create(offer *models.OfferImage) error
	Update(offer *models.OfferImage) error
	Delete(id uint) error
	DeactivateExpired(now time.Time) (int64, error)
}

// GormOfferImageRepository GORM 实现
type GormOfferImageRepository struct {
	db *gorm.DB
}

// NewOfferImageRepository 创建活动图仓库
func NewOfferImageRepository(db *gorm.DB) *GormOfferImageRepository {
	return &GormOfferImageRepository{db: db}
}

// List 活动图列表，OnlyValid 时仅返回启用且处于投放窗口内的记录
func (r *GormOfferImageRepository) List(filter OfferImageListFilter) ([]models.OfferImage, int64, error) {
	query := r.db.Model(&models.OfferImage{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.OnlyValid {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = query.Where("status = ?", constants.StatusActive).
			Where("(start_date IS NULL OR start_date <= ?)", now).
			Where("(end_date IS NULL OR end_date >= ?)", now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var offers []models.OfferImage
	if err := query.Order("display_order asc, created_at desc, id desc").Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

// GetByID 根据 ID 获取活动图
func (r *GormOfferImageRepository) GetByID(id uint) (*models.OfferImage, error) {
	var offer models.OfferImage
	if err := r.db.First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// Create 创建活动图
func (r *GormOfferImageRepository) Create(offer *models.OfferImage) error {
	return r.db.Create(offer).Error
}

// Update 更新活动图
func (r *GormOfferImageRepository) Update(offer *models.OfferImage) error {
	return r.db.Save(offer).Error
}

// Delete 删除活动图
func (r *GormOfferImageRepository) Delete(id uint) error {
	return r.db.Delete(&models.OfferImage{}, id).Error
}

// DeactivateExpired 将已过投放期的启用活动图置为停用
func (r *GormOfferImageRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.OfferImage{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", constants.StatusActive, now).
		Update("status", constants.StatusInactive)
	return result.RowsAffected, result.Error
}
