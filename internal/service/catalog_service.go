package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/example/freshharvest/internal/datamodels/cart"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// CatalogService 商品目录的只读视图
type CatalogService struct {
	repo product.Repository
}

// NewCatalogService 创建目录服务
func NewCatalogService(repo product.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List 按分类筛选，keyword 非空时再按名称做大小写无关的子串过滤
func (s *CatalogService) List(ctx context.Context, category, keyword string) ([]*product.Product, error) {
	list, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if keyword == "" {
		return list, nil
	}
	kw := strings.ToLower(keyword)
	filtered := make([]*product.Product, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), kw) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Get 按规范化字符串标识取商品
// 标识非法或商品不存在时返回 (nil, nil)，调用方按无此商品处理
func (s *CatalogService) Get(ctx context.Context, id string) (*product.Product, error) {
	numeric, err := strconv.ParseInt(cart.NormalizeID(id), 10, 64)
	if err != nil {
		return nil, nil
	}
	p, err := s.repo.GetByID(ctx, numeric)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
