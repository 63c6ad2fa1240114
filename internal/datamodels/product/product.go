package product

import (
	"context"
	"time"
)

// Product 商品模型
// 分类：vegetables(蔬菜)、fruits(水果)、dairy(乳制品)、bakery(烘焙)
type Product struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"` // 美元
	Category  string    `gorm:"size:32;index" json:"category"`
	Unit      string    `gorm:"size:32" json:"unit"` // 计价单位，例如 "1 kg"、"500 g"
	Image     string    `gorm:"size:512" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error) // 按分类查询
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) (int64, error)
}
