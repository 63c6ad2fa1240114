package cart

import (
	"context"
	"strconv"
	"strings"

	"github.com/example/freshharvest/internal/datamodels/order"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// DefaultShippingFee 固定运费（美元）
const DefaultShippingFee = 5.00

// Item 购物车行项，商品字段是加入时刻的快照
type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Unit      string  `json:"unit"`
	Image     string  `json:"image"`
	Quantity  int64   `json:"quantity"`
}

// Totals 购物车金额汇总
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	GrandTotal float64 `json:"grand_total"`
}

// NormalizeID 外部传入的商品标识统一为去除空白的十进制字符串，
// 内部只做精确字符串比较
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// FormatID 数据库数值主键转为规范字符串标识
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Store 购物车持久化存储，按固定 key 保存整个行项序列
type Store interface {
	Load(ctx context.Context, key string) ([]Item, error)
	Save(ctx context.Context, key string, items []Item) error
	Clear(ctx context.Context, key string) error
}

// Cart 内存中的购物车，保持插入顺序
// 不变式：行项数量恒 > 0，且同一商品标识至多出现一次
type Cart struct {
	shippingFee float64
	items       []Item
}

// New 用已持久化的行项重建购物车
func New(shippingFee float64, items []Item) *Cart {
	if shippingFee <= 0 {
		shippingFee = DefaultShippingFee
	}
	c := &Cart{shippingFee: shippingFee}
	// 重建时同样保证不变式，历史脏数据直接丢弃
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		it.ProductID = NormalizeID(it.ProductID)
		if c.find(it.ProductID) >= 0 {
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

func (c *Cart) find(id string) int {
	for i := range c.items {
		if c.items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add 加入商品，已存在则累加数量，否则按当前商品字段生成快照行项
// p 为 nil 时不做任何事（商品不在目录中）
func (c *Cart) Add(p *product.Product, qty int64) {
	if p == nil {
		return
	}
	if qty <= 0 {
		qty = 1
	}
	id := FormatID(p.ID)
	if i := c.find(id); i >= 0 {
		c.items[i].Quantity += qty
		return
	}
	c.items = append(c.items, Item{
		ProductID: id,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Unit:      p.Unit,
		Image:     p.Image,
		Quantity:  qty,
	})
}

// Remove 删除指定商品的行项，不存在则不做任何事
func (c *Cart) Remove(id string) bool {
	i := c.find(NormalizeID(id))
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// ChangeQuantity 数量增减，结果 <= 0 时整行移除，不存在则不做任何事
func (c *Cart) ChangeQuantity(id string, delta int64) {
	i := c.find(NormalizeID(id))
	if i < 0 {
		return
	}
	c.items[i].Quantity += delta
	if c.items[i].Quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Totals 金额汇总，纯计算无副作用
func (c *Cart) Totals() Totals {
	var subtotal float64
	for _, it := range c.items {
		subtotal += it.Price * float64(it.Quantity)
	}
	return Totals{
		Subtotal:   subtotal,
		GrandTotal: subtotal + c.shippingFee,
	}
}

// ItemCount 所有行项数量之和，用于购物车角标
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Items 行项副本，调用方修改不影响购物车
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len 行项条数
func (c *Cart) Len() int {
	return len(c.items)
}

// Snapshot 生成订单商品快照（深拷贝），之后购物车再变化也不影响订单
func (c *Cart) Snapshot() order.Items {
	out := make(order.Items, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return out
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.items = nil
}
