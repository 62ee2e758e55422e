package service

import (
	"strings"

	"github.com/storedesk/internal/constants"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string
	Description string
	Status      string
}

// List 获取分类列表
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, int64, error) {
	return s.repo.List(filter)
}

// Get 获取分类
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryInvalid
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, ErrCategoryInvalid
	}
	if err := s.ensureNameAvailable(name, 0); err != nil {
		return nil, err
	}

	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
	}
	if err := s.repo.Create(&category); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, err
	}
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		if err := s.ensureNameAvailable(name, id); err != nil {
			return nil, err
		}
		category.Name = name
	}
	category.Description = strings.TrimSpace(input.Description)
	if strings.TrimSpace(input.Status) != "" {
		status, err := normalizeStatus(input.Status)
		if err != nil {
			return nil, ErrCategoryInvalid
		}
		category.Status = status
	}

	if err := s.repo.Update(category); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，存在子分类时拒绝
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	count, err := s.repo.CountSubCategories(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}

func (s *CategoryService) ensureNameAvailable(name string, excludeID uint) error {
	count, err := s.repo.CountByName(name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNameExists
	}
	return nil
}

// normalizeStatus 归一化 active/inactive 状态，空值视为 active
func normalizeStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.StatusActive:
		return constants.StatusActive, nil
	case constants.StatusInactive:
		return constants.StatusInactive, nil
	default:
		return "", ErrCategoryInvalid
	}
}
