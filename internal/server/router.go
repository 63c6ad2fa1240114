package server

import (
	"errors"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"gorm.io/gorm"

	"github.com/example/freshharvest/internal/config"
	"github.com/example/freshharvest/internal/infra/mq"
	"github.com/example/freshharvest/internal/infra/redis"
	"github.com/example/freshharvest/internal/middleware"
	"github.com/example/freshharvest/internal/repository/mysql"
	"github.com/example/freshharvest/internal/repository/redisstore"
	"github.com/example/freshharvest/internal/service"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 静态资源：前端页面由静态文件承载，只消费下面的 JSON 接口
	app.HandleDir("/assets", iris.Dir("./web/assets"))
	app.Get("/", func(ctx iris.Context) {
		_ = ctx.ServeFile("./web/index.html")
	})

	// 会话：购物车以会话 ID 作为持久化 key，刷新页面不丢
	sess := sessions.New(sessions.Config{
		Cookie:       "freshharvest_session",
		Expires:      30 * 24 * time.Hour,
		AllowReclaim: true,
	})

	// 仓储与服务
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	cartStore := redisstore.NewCartStore(redisClient)
	publisher := service.NewMQPublisher(mqConn)

	catalogSvc := service.NewCatalogService(productRepo)
	cartSvc := service.NewCartService(catalogSvc, cartStore, publisher, cfg.Checkout.ShippingFee)
	checkoutSvc := service.NewCheckoutService(orderRepo, cartStore, publisher, cfg.Checkout.ShippingFee)
	wishlistSvc := service.NewWishlistService(redisstore.NewWishlistStore(redisClient), catalogSvc)

	cartKey := func(ctx iris.Context) string {
		return sess.Start(ctx).ID()
	}

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// 商品列表（支持分类筛选与名称搜索）
	api.Get("/products", func(ctx iris.Context) {
		category := ctx.URLParam("category")
		keyword := ctx.URLParam("q")
		list, err := catalogSvc.List(ctx.Request().Context(), category, keyword)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// ---------------- 购物车 ----------------

	api.Get("/cart", func(ctx iris.Context) {
		view, err := cartSvc.Get(ctx.Request().Context(), cartKey(ctx))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	// 加购，商品不存在时静默返回当前购物车
	api.Post("/cart/items", func(ctx iris.Context) {
		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int64  `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		view, err := cartSvc.Add(ctx.Request().Context(), cartKey(ctx), req.ProductID, req.Quantity)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	// 数量增减，减到 0 即整行移除
	api.Patch("/cart/items/{id:string}", func(ctx iris.Context) {
		id := ctx.Params().Get("id")
		var req struct {
			Delta int64 `json:"delta"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		view, err := cartSvc.ChangeQuantity(ctx.Request().Context(), cartKey(ctx), id, req.Delta)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	api.Delete("/cart/items/{id:string}", func(ctx iris.Context) {
		id := ctx.Params().Get("id")
		view, err := cartSvc.Remove(ctx.Request().Context(), cartKey(ctx), id)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	// ---------------- 收藏夹 ----------------

	api.Get("/wishlist", func(ctx iris.Context) {
		list, err := wishlistSvc.List(ctx.Request().Context(), cartKey(ctx))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 收藏切换，同一商品再点一次即取消
	api.Post("/wishlist/items", func(ctx iris.Context) {
		var req struct {
			ProductID string `json:"product_id"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		added, err := wishlistSvc.Toggle(ctx.Request().Context(), cartKey(ctx), req.ProductID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"added": added}})
	})

	// ---------------- 结算 ----------------

	// 下单：校验失败 400，远端失败 500 且购物车保持原样可重试
	api.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		var req service.CheckoutRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := checkoutSvc.Submit(ctx.Request().Context(), cartKey(ctx), &req)
		if err != nil {
			if errors.Is(err, service.ErrCartEmpty) {
				ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"order_id": o.ID,
			"order":    o,
		}})
	})

	// 成功页按订单号查询
	api.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		o, err := checkoutSvc.GetOrder(ctx.Request().Context(), int64(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})
}
