package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
)

type catalogTestEnv struct {
	categories    *CategoryService
	subcategories *SubCategoryService
	products      *ProductService
	productRepo   *repository.GormProductRepository
	remover       *fakeImageRemover
}

type fakeImageRemover struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeImageRemover) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}

func newCatalogTestEnv(t *testing.T) *catalogTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	categoryRepo := repository.NewCategoryRepository(db)
	subRepo := repository.NewSubCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	remover := &fakeImageRemover{}
	return &catalogTestEnv{
		categories:    NewCategoryService(categoryRepo),
		subcategories: NewSubCategoryService(subRepo, categoryRepo, productRepo),
		products:      NewProductService(productRepo, categoryRepo, subRepo, remover, 3),
		productRepo:   productRepo,
		remover:       remover,
	}
}

func (env *catalogTestEnv) seedTree(t *testing.T) (*models.Category, *models.SubCategory) {
	t.Helper()
	category, err := env.categories.Create(CategoryInput{Name: "Electronics"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	sub, err := env.subcategories.Create(SubCategoryInput{CategoryID: category.ID, Name: "Phones"})
	if err != nil {
		t.Fatalf("create subcategory failed: %v", err)
	}
	return category, sub
}

func TestCategoryNameIsUniqueCaseInsensitive(t *testing.T) {
	env := newCatalogTestEnv(t)
	created, err := env.categories.Create(CategoryInput{Name: "Books"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != "active" {
		t.Fatalf("expected default active status, got %s", created.Status)
	}
	if _, err := env.categories.Create(CategoryInput{Name: " books "}); !errors.Is(err, ErrCategoryNameExists) {
		t.Fatalf("expected name exists, got %v", err)
	}
	if _, err := env.categories.Create(CategoryInput{Name: "Toys", Status: "archived"}); !errors.Is(err, ErrCategoryInvalid) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	// 更新为自身名称不应冲突
	if _, err := env.categories.Update(created.ID, CategoryInput{Name: "BOOKS", Description: "paper"}); err != nil {
		t.Fatalf("update own name failed: %v", err)
	}
}

func TestCategoryDeleteRejectedWhileSubCategoriesExist(t *testing.T) {
	env := newCatalogTestEnv(t)
	category, sub := env.seedTree(t)

	if err := env.categories.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}
	if err := env.subcategories.Delete(sub.ID); err != nil {
		t.Fatalf("delete subcategory failed: %v", err)
	}
	if err := env.categories.Delete(category.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	if _, err := env.categories.Get(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubCategoryRequiresExistingCategory(t *testing.T) {
	env := newCatalogTestEnv(t)
	if _, err := env.subcategories.Create(SubCategoryInput{CategoryID: 404, Name: "Orphan"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
	if _, err := env.subcategories.Create(SubCategoryInput{Name: "NoParent"}); !errors.Is(err, ErrSubCategoryInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestSubCategoryDeleteCascadesProducts(t *testing.T) {
	env := newCatalogTestEnv(t)
	category, sub := env.seedTree(t)
	for _, name := range []string{"P1", "P2"} {
		if _, err := env.products.Create(ProductInput{CategoryID: category.ID, SubCategoryID: sub.ID, Name: name, Price: models.MustMoney("10")}); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	if err := env.subcategories.Delete(sub.ID); err != nil {
		t.Fatalf("delete subcategory failed: %v", err)
	}
	products, total, err := env.products.List(repository.ProductListFilter{SubCategoryID: sub.ID})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Fatalf("expected products to cascade, got %d", total)
	}
}

func TestProductRequiresConsistentCatalog(t *testing.T) {
	env := newCatalogTestEnv(t)
	category, sub := env.seedTree(t)
	other, err := env.categories.Create(CategoryInput{Name: "Garden"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	if _, err := env.products.Create(ProductInput{CategoryID: other.ID, SubCategoryID: sub.ID, Name: "Mismatch", Price: models.MustMoney("1")}); !errors.Is(err, ErrSubCategoryInvalid) {
		t.Fatalf("expected subcategory mismatch, got %v", err)
	}
	if _, err := env.products.Create(ProductInput{CategoryID: category.ID, Name: "NoSub", Price: models.MustMoney("1")}); !errors.Is(err, ErrProductInvalid) {
		t.Fatalf("expected invalid product, got %v", err)
	}
	if _, err := env.products.Create(ProductInput{CategoryID: category.ID, SubCategoryID: sub.ID, Name: "Neg", Price: models.MustMoney("-1")}); !errors.Is(err, ErrProductInvalid) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestProductImagesLimitAndCleanup(t *testing.T) {
	env := newCatalogTestEnv(t)
	category, sub := env.seedTree(t)

	_, err := env.products.Create(ProductInput{
		CategoryID:    category.ID,
		SubCategoryID: sub.ID,
		Name:          "TooMany",
		Price:         models.MustMoney("5"),
		Images:        []string{"/a.png", "/b.png", "/c.png", "/d.png"},
	})
	if !errors.Is(err, ErrProductImageLimit) {
		t.Fatalf("expected image limit, got %v", err)
	}

	stock := 4
	product, err := env.products.Create(ProductInput{
		CategoryID:    category.ID,
		SubCategoryID: sub.ID,
		Name:          "Phone",
		Price:         models.MustMoney("99.90"),
		Stock:         &stock,
		Images:        []string{"/a.png", "/b.png", "/a.png"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(product.Images) != 2 || product.Stock != 4 || product.Category == nil || product.SubCategory == nil {
		t.Fatalf("unexpected product: %+v", product)
	}

	updated, err := env.products.Update(context.Background(), product.ID, ProductInput{
		Name:   "Phone X",
		Price:  models.MustMoney("109.90"),
		Images: []string{"/b.png", "/c.png"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Phone X" || updated.Price.String() != "109.90" || updated.Stock != 4 {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if len(env.remover.removed) != 1 || env.remover.removed[0] != "/a.png" {
		t.Fatalf("expected /a.png removed, got %v", env.remover.removed)
	}

	if err := env.products.Delete(context.Background(), product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(env.remover.removed) != 3 {
		t.Fatalf("expected all images removed, got %v", env.remover.removed)
	}
}

func TestProductListSearchIsCaseInsensitive(t *testing.T) {
	env := newCatalogTestEnv(t)
	category, sub := env.seedTree(t)
	for _, name := range []string{"Red Shirt", "Blue Shirt", "Green Hat"} {
		if _, err := env.products.Create(ProductInput{CategoryID: category.ID, SubCategoryID: sub.ID, Name: name, Price: models.MustMoney("3")}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	products, total, err := env.products.List(repository.ProductListFilter{Search: "shirt", Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(products) != 1 {
		t.Fatalf("expected 2 matches with page size 1, got total=%d len=%d", total, len(products))
	}
}
