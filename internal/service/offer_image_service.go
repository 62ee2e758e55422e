package service

import (
	"context"
	"strings"
	"time"

	"github.com/storedesk/internal/cache"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
)

// OfferImageService 首页活动图服务
type OfferImageService struct {
	repo   repository.OfferImageRepository
	images ImageRemover
	now    func() time.Time
}

// NewOfferImageService 创建活动图服务
func NewOfferImageService(repo repository.OfferImageRepository, images ImageRemover) *OfferImageService {
	return &OfferImageService{repo: repo, images: images, now: time.Now}
}

// OfferImageInput 创建/更新活动图输入
type OfferImageInput struct {
	Image        string
	Description  string
	DisplayOrder *int
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string
}

// PublicOfferList 前台活动图列表
type PublicOfferList struct {
	Items []models.OfferImage `json:"items"`
	Count int                 `json:"count"`
}

// ListPublic 获取当前投放中的活动图（带缓存）
func (s *OfferImageService) ListPublic(ctx context.Context) (*PublicOfferList, error) {
	var result PublicOfferList
	err := cache.GetOrLoadJSON(ctx, cache.PublicOffersKey, cache.PublicOffersTTL, &result, func() (interface{}, error) {
		offers, _, err := s.repo.List(repository.OfferImageListFilter{OnlyValid: true, Now: s.now()})
		if err != nil {
			return nil, err
		}
		if offers == nil {
			offers = []models.OfferImage{}
		}
		return PublicOfferList{Items: offers, Count: len(offers)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAdmin 后台活动图列表
func (s *OfferImageService) ListAdmin(filter repository.OfferImageListFilter) ([]models.OfferImage, int64, error) {
	return s.repo.List(filter)
}

// Get 获取活动图
func (s *OfferImageService) Get(id uint) (*models.OfferImage, error) {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

// Create 创建活动图
func (s *OfferImageService) Create(ctx context.Context, input OfferImageInput) (*models.OfferImage, error) {
	image := strings.TrimSpace(input.Image)
	if image == "" {
		return nil, ErrOfferInvalid
	}
	if err := validateOfferWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, ErrOfferInvalid
	}
	offer := models.OfferImage{
		Image:       image,
		Description: strings.TrimSpace(input.Description),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
	}
	if input.DisplayOrder != nil {
		offer.DisplayOrder = *input.DisplayOrder
	}
	if err := s.repo.Create(&offer); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &offer, nil
}

// Update 更新活动图，替换图片时删除旧图
func (s *OfferImageService) Update(ctx context.Context, id uint, input OfferImageInput) (*models.OfferImage, error) {
	offer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	start, end := offer.StartDate, offer.EndDate
	if input.StartDate != nil {
		start = input.StartDate
	}
	if input.EndDate != nil {
		end = input.EndDate
	}
	if err := validateOfferWindow(start, end); err != nil {
		return nil, err
	}

	var replaced string
	if image := strings.TrimSpace(input.Image); image != "" && image != offer.Image {
		replaced = offer.Image
		offer.Image = image
	}
	offer.Description = strings.TrimSpace(input.Description)
	offer.StartDate = start
	offer.EndDate = end
	if input.DisplayOrder != nil {
		offer.DisplayOrder = *input.DisplayOrder
	}
	if strings.TrimSpace(input.Status) != "" {
		status, err := normalizeStatus(input.Status)
		if err != nil {
			return nil, ErrOfferInvalid
		}
		offer.Status = status
	}

	if err := s.repo.Update(offer); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	if replaced != "" {
		s.removeImage(ctx, replaced)
	}
	return offer, nil
}

// Delete 删除活动图
func (s *OfferImageService) Delete(ctx context.Context, id uint) error {
	offer, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.removeImage(ctx, offer.Image)
	return nil
}

// DeactivateExpired 停用已过期活动图，由定时任务调用
func (s *OfferImageService) DeactivateExpired(ctx context.Context) (int64, error) {
	affected, err := s.repo.DeactivateExpired(s.now())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.invalidate(ctx)
	}
	return affected, nil
}

func (s *OfferImageService) invalidate(ctx context.Context) {
	if err := cache.Del(ctx, cache.PublicOffersKey); err != nil {
		logger.Warnw("offer_cache_invalidate_failed", "error", err)
	}
}

func (s *OfferImageService) removeImage(ctx context.Context, url string) {
	if s.images == nil || strings.TrimSpace(url) == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logger.Warnw("offer_image_delete_failed", "url", url, "error", err)
	}
}

func validateOfferWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrOfferInvalid
	}
	return nil
}
