package repository

import (
	"testing"

	"github.com/storedesk/internal/models"
)

func TestProductRepositoryListFiltersAndSearch(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewProductRepository(db)

	category := &models.Category{Name: "Apparel", Status: "active"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	shirts := &models.SubCategory{CategoryID: category.ID, Name: "Shirts", Status: "active"}
	shoes := &models.SubCategory{CategoryID: category.ID, Name: "Shoes", Status: "active"}
	if err := db.Create(shirts).Error; err != nil {
		t.Fatalf("create subcategory failed: %v", err)
	}
	if err := db.Create(shoes).Error; err != nil {
		t.Fatalf("create subcategory failed: %v", err)
	}

	items := []models.Product{
		{CategoryID: category.ID, SubCategoryID: shirts.ID, Name: "Linen Shirt", Description: "summer", Price: models.MustMoney("29.90"), Status: "active"},
		{CategoryID: category.ID, SubCategoryID: shirts.ID, Name: "Oxford", Description: "classic COTTON shirt", Price: models.MustMoney("39.90"), Status: "active"},
		{CategoryID: category.ID, SubCategoryID: shoes.ID, Name: "Runner", Description: "lightweight", Price: models.MustMoney("89.00"), Status: "active"},
	}
	for i := range items {
		if err := repo.Create(&items[i]); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	bySub, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 10, SubCategoryID: shirts.ID})
	if err != nil {
		t.Fatalf("list by subcategory failed: %v", err)
	}
	if total != 2 || len(bySub) != 2 {
		t.Fatalf("subcategory filter want 2 got total=%d len=%d", total, len(bySub))
	}

	searched, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 10, Search: "cotton", WithCategory: true})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 1 || len(searched) != 1 || searched[0].Name != "Oxford" {
		t.Fatalf("search should match description case-insensitively, got %+v", searched)
	}
	if searched[0].Category == nil || searched[0].Category.Name != "Apparel" {
		t.Fatalf("category should be preloaded")
	}

	paged, total, err := repo.List(ProductListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 3 || len(paged) != 1 {
		t.Fatalf("page 2 want 1 item of 3, got total=%d len=%d", total, len(paged))
	}
}

func TestProductRepositoryDeleteBySubCategory(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewProductRepository(db)
	for _, sub := range []uint{1, 1, 2} {
		product := &models.Product{CategoryID: 1, SubCategoryID: sub, Name: "p", Status: "active"}
		if err := repo.Create(product); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	deleted, err := repo.DeleteBySubCategory(1)
	if err != nil {
		t.Fatalf("delete by subcategory failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted want 2 got %d", deleted)
	}
	_, total, err := repo.List(ProductListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("remaining want 1 got %d", total)
	}
}
