package service

import (
	"context"
	"strings"

	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
)

const defaultMaxProductImages = 10

// ImageRemover 删除已上传的图片
type ImageRemover interface {
	Delete(ctx context.Context, url string) error
}

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	subRepo      repository.SubCategoryRepository
	images       ImageRemover
	maxImages    int
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, subRepo repository.SubCategoryRepository, images ImageRemover, maxImages int) *ProductService {
	if maxImages <= 0 {
		maxImages = defaultMaxProductImages
	}
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		subRepo:      subRepo,
		images:       images,
		maxImages:    maxImages,
	}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID    uint
	SubCategoryID uint
	Name          string
	Description   string
	Price         models.Money
	Stock         *int
	Images        []string
	Status        string
}

// MaxImages 单个商品图片上限
func (s *ProductService) MaxImages() int {
	return s.maxImages
}

// List 获取商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.repo.List(filter)
}

// Get 获取商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price.IsNegative() {
		return nil, ErrProductInvalid
	}
	if err := s.ensureCatalog(input.CategoryID, input.SubCategoryID); err != nil {
		return nil, err
	}
	images, err := s.normalizeImages(input.Images)
	if err != nil {
		return nil, err
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, ErrProductInvalid
	}

	product := models.Product{
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Price:         models.NewMoneyFromDecimal(input.Price.Decimal),
		Images:        images,
		Status:        status,
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrProductInvalid
		}
		product.Stock = *input.Stock
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return s.Get(product.ID)
}

// Update 更新商品，图片列表整体替换，移除的图片从存储删除
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	categoryID := product.CategoryID
	subCategoryID := product.SubCategoryID
	if input.CategoryID != 0 {
		categoryID = input.CategoryID
	}
	if input.SubCategoryID != 0 {
		subCategoryID = input.SubCategoryID
	}
	if categoryID != product.CategoryID || subCategoryID != product.SubCategoryID {
		if err := s.ensureCatalog(categoryID, subCategoryID); err != nil {
			return nil, err
		}
	}
	if input.Price.IsNegative() {
		return nil, ErrProductInvalid
	}
	images, err := s.normalizeImages(input.Images)
	if err != nil {
		return nil, err
	}

	removed := diffImages(product.Images, images)

	product.CategoryID = categoryID
	product.SubCategoryID = subCategoryID
	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	product.Images = images
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrProductInvalid
		}
		product.Stock = *input.Stock
	}
	if strings.TrimSpace(input.Status) != "" {
		status, err := normalizeStatus(input.Status)
		if err != nil {
			return nil, ErrProductInvalid
		}
		product.Status = status
	}
	product.Category = nil
	product.SubCategory = nil

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.removeImages(ctx, removed)
	return s.Get(product.ID)
}

// Delete 删除商品及其图片
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.removeImages(ctx, product.Images)
	return nil
}

func (s *ProductService) ensureCatalog(categoryID, subCategoryID uint) error {
	if categoryID == 0 || subCategoryID == 0 {
		return ErrProductInvalid
	}
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	sub, err := s.subRepo.GetByID(subCategoryID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubCategoryNotFound
	}
	if sub.CategoryID != categoryID {
		return ErrSubCategoryInvalid
	}
	return nil
}

func (s *ProductService) normalizeImages(images []string) (models.StringArray, error) {
	result := make(models.StringArray, 0, len(images))
	seen := make(map[string]struct{}, len(images))
	for _, image := range images {
		trimmed := strings.TrimSpace(image)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) > s.maxImages {
		return nil, ErrProductImageLimit
	}
	return result, nil
}

func (s *ProductService) removeImages(ctx context.Context, urls []string) {
	if s.images == nil {
		return
	}
	for _, url := range urls {
		if err := s.images.Delete(ctx, url); err != nil {
			logger.Warnw("product_image_delete_failed", "url", url, "error", err)
		}
	}
}

// diffImages 返回 before 中不再出现在 after 的图片
func diffImages(before, after []string) []string {
	kept := make(map[string]struct{}, len(after))
	for _, url := range after {
		kept[url] = struct{}{}
	}
	var removed []string
	for _, url := range before {
		if _, ok := kept[url]; !ok {
			removed = append(removed, url)
		}
	}
	return removed
}
