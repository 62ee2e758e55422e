package repository

import (
	"errors"
	"strings"

	"github.com/storedesk/internal/models"

	"gorm.io/gorm"
)

// SubCategoryRepository 子分类数据访问接口
type SubCategoryRepository interface {
	List(filter SubCategoryListFilter) ([]models.SubCategory, int64, error)
	GetByID(id uint) (*models.SubCategory, error)
	Create(sub *models.SubCategory) error
	Update(sub *models.SubCategory) error
	Delete(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SubCategoryRepository
}

// GormSubCategoryRepository GORM 实现
type GormSubCategoryRepository struct {
	db *gorm.DB
}

// NewSubCategoryRepository 创建子分类仓库
func NewSubCategoryRepository(db *gorm.DB) *GormSubCategoryRepository {
	return &GormSubCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSubCategoryRepository) WithTx(tx *gorm.DB) SubCategoryRepository {
	if tx == nil {
		return r
	}
	return &GormSubCategoryRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSubCategoryRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 子分类列表
func (r *GormSubCategoryRepository) List(filter SubCategoryListFilter) ([]models.SubCategory, int64, error) {
	query := r.db.Model(&models.SubCategory{})
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var subs []models.SubCategory
	if err := query.Preload("Category").Order("created_at desc, id desc").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// GetByID 根据 ID 获取子分类
func (r *GormSubCategoryRepository) GetByID(id uint) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := r.db.Preload("Category").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Create 创建子分类
func (r *GormSubCategoryRepository) Create(sub *models.SubCategory) error {
	return r.db.Omit("Category").Create(sub).Error
}

// Update 更新子分类
func (r *GormSubCategoryRepository) Update(sub *models.SubCategory) error {
	return r.db.Omit("Category").Save(sub).Error
}

// Delete 删除子分类
func (r *GormSubCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubCategory{}, id).Error
}
