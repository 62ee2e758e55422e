package service

import (
	"strings"

	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"

	"gorm.io/gorm"
)

// SubCategoryService 子分类业务服务
type SubCategoryService struct {
	repo         repository.SubCategoryRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewSubCategoryService 创建子分类服务
func NewSubCategoryService(repo repository.SubCategoryRepository, categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *SubCategoryService {
	return &SubCategoryService{
		repo:         repo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// SubCategoryInput 创建/更新子分类输入
type SubCategoryInput struct {
	CategoryID  uint
	Name        string
	Description string
	Status      string
}

// List 获取子分类列表
func (s *SubCategoryService) List(filter repository.SubCategoryListFilter) ([]models.SubCategory, int64, error) {
	return s.repo.List(filter)
}

// Get 获取子分类
func (s *SubCategoryService) Get(id uint) (*models.SubCategory, error) {
	sub, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubCategoryNotFound
	}
	return sub, nil
}

// Create 创建子分类
func (s *SubCategoryService) Create(input SubCategoryInput) (*models.SubCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.CategoryID == 0 {
		return nil, ErrSubCategoryInvalid
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, ErrSubCategoryInvalid
	}
	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}

	sub := models.SubCategory{
		CategoryID:  input.CategoryID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
	}
	if err := s.repo.Create(&sub); err != nil {
		return nil, err
	}
	return s.Get(sub.ID)
}

// Update 更新子分类
func (s *SubCategoryService) Update(id uint, input SubCategoryInput) (*models.SubCategory, error) {
	sub, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != 0 && input.CategoryID != sub.CategoryID {
		if err := s.ensureCategory(input.CategoryID); err != nil {
			return nil, err
		}
		sub.CategoryID = input.CategoryID
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		sub.Name = name
	}
	sub.Description = strings.TrimSpace(input.Description)
	if strings.TrimSpace(input.Status) != "" {
		status, err := normalizeStatus(input.Status)
		if err != nil {
			return nil, ErrSubCategoryInvalid
		}
		sub.Status = status
	}
	sub.Category = nil
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	return s.Get(sub.ID)
}

// Delete 删除子分类并级联删除其下商品
func (s *SubCategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		removed, err := s.productRepo.WithTx(tx).DeleteBySubCategory(id)
		if err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(id); err != nil {
			return err
		}
		if removed > 0 {
			logger.Infow("subcategory_deleted_with_products", "sub_category_id", id, "products", removed)
		}
		return nil
	})
}

func (s *SubCategoryService) ensureCategory(categoryID uint) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}
