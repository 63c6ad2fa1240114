package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/freshharvest/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus 按订单 ID 更新状态，返回受影响行数（0 表示订单已不存在）
func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&order.Order{}, id)
	return res.RowsAffected, res.Error
}
