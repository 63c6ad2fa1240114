package main

import (
	"context"
	"log"

	"github.com/example/freshharvest/internal/config"
	"github.com/example/freshharvest/internal/datamodels/product"
	"github.com/example/freshharvest/internal/repository/mysql"
)

// seed-products 向商品表写入演示目录数据，本地跑通前台用
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := mysql.Init(&cfg.MySQL)
	repo := mysql.NewProductRepository(db)

	seed := []*product.Product{
		{Name: "Organic Tomatoes", Price: 3.50, Category: "vegetables", Unit: "1 kg", Image: "/assets/img/products/tomatoes.jpg"},
		{Name: "Fresh Spinach", Price: 2.20, Category: "vegetables", Unit: "500 g", Image: "/assets/img/products/spinach.jpg"},
		{Name: "Sweet Carrots", Price: 1.80, Category: "vegetables", Unit: "1 kg", Image: "/assets/img/products/carrots.jpg"},
		{Name: "Red Apples", Price: 4.00, Category: "fruits", Unit: "1 kg", Image: "/assets/img/products/apples.jpg"},
		{Name: "Bananas", Price: 2.50, Category: "fruits", Unit: "1 kg", Image: "/assets/img/products/bananas.jpg"},
		{Name: "Strawberries", Price: 6.00, Category: "fruits", Unit: "500 g", Image: "/assets/img/products/strawberries.jpg"},
		{Name: "Whole Milk", Price: 1.60, Category: "dairy", Unit: "1 L", Image: "/assets/img/products/milk.jpg"},
		{Name: "Farm Eggs", Price: 3.80, Category: "dairy", Unit: "12 pcs", Image: "/assets/img/products/eggs.jpg"},
		{Name: "Cheddar Cheese", Price: 7.20, Category: "dairy", Unit: "250 g", Image: "/assets/img/products/cheese.jpg"},
		{Name: "Sourdough Bread", Price: 4.50, Category: "bakery", Unit: "1 loaf", Image: "/assets/img/products/sourdough.jpg"},
		{Name: "Croissants", Price: 5.00, Category: "bakery", Unit: "4 pcs", Image: "/assets/img/products/croissants.jpg"},
		{Name: "Honey", Price: 8.50, Category: "bakery", Unit: "350 g", Image: "/assets/img/products/honey.jpg"},
	}

	ctx := context.Background()
	created := 0
	for _, p := range seed {
		if err := repo.Create(ctx, p); err != nil {
			log.Printf("seed %q failed: %v", p.Name, err)
			continue
		}
		created++
	}
	log.Printf("seeded %d/%d products", created, len(seed))
}
