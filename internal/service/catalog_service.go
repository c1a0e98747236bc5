package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/catalog"
)

type CatalogService struct {
	repo       *catalog.Repo
	storefront *Storefront
}

func NewCatalogService(repo *catalog.Repo, storefront *Storefront) *CatalogService {
	return &CatalogService{repo: repo, storefront: storefront}
}

func (c *CatalogService) Brands() []model.Brand {
	return c.repo.Brands()
}

func (c *CatalogService) ByBrand(brand string) ([]model.Laptop, error) {
	laptops, ok := c.repo.ByBrand(brand)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBrandNotFound, brand)
	}
	return laptops, nil
}

func (c *CatalogService) Find(productID string) (model.Laptop, error) {
	laptop, ok := c.repo.Find(productID)
	if !ok {
		return model.Laptop{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return laptop, nil
}

func (c *CatalogService) Search(q string) []model.Laptop {
	return c.repo.Search(q)
}

// AddToCart 以型錄資料組出購物車品項, 價格與名稱以型錄為準
// 商品有宣告顏色時 color 必須是其中之一 (不分大小寫), 空字串表示不指定
func (c *CatalogService) AddToCart(ctx context.Context, productID, color string) (model.CartLineItem, error) {
	laptop, err := c.Find(productID)
	if err != nil {
		return model.CartLineItem{}, err
	}
	color = strings.TrimSpace(color)
	if color != "" {
		if !laptop.HasColor(color) {
			return model.CartLineItem{}, fmt.Errorf("%w: color %q not available for %s", ErrInvalidArgument, color, productID)
		}
		color = canonicalColor(laptop, color)
	}
	item := laptop.LineItem(color)
	if err := c.storefront.AddToCart(ctx, item); err != nil {
		return model.CartLineItem{}, err
	}
	stored, _ := c.storefront.CartItem(item.ID)
	return stored, nil
}

func canonicalColor(laptop model.Laptop, color string) string {
	for _, c := range laptop.Colors {
		if strings.EqualFold(c, color) {
			return c
		}
	}
	return color
}
