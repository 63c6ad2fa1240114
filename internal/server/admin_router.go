package server

import (
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/freshharvest/internal/auth"
	"github.com/example/freshharvest/internal/config"
	"github.com/example/freshharvest/internal/datamodels/order"
	"github.com/example/freshharvest/internal/infra/redis"
	"github.com/example/freshharvest/internal/repository/mysql"
	"github.com/example/freshharvest/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	// 仓储与服务
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	adminSvc := service.NewAdminService(orderRepo, productRepo)
	tokenCache := auth.NewTokenCache(redisClient, time.Duration(cfg.Admin.TokenCacheTTLSeconds)*time.Second)

	// 静态资源
	app.HandleDir("/assets", iris.Dir("./web/admin/assets"))
	app.Get("/", func(ctx iris.Context) {
		_ = ctx.ServeFile("./web/admin/index.html")
	})

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 管理员登录，账号在配置中
	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Username != cfg.Admin.Username || req.Password != cfg.Admin.Password {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid credentials"})
			return
		}
		token, err := auth.GenerateToken(&cfg.JWT, req.Username)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// 需要登录的接口，验签结果走 Redis 缓存
	authAPI := api.Party("/", func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}
		claims, hit, err := tokenCache.Get(ctx.Request().Context(), token)
		if err != nil {
			// 缓存故障不拦请求，直接走验签
			zap.L().Warn("token cache get failed", zap.Error(err))
		}
		if !hit {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			if err := tokenCache.Set(ctx.Request().Context(), token, claims); err != nil {
				zap.L().Warn("token cache set failed", zap.Error(err))
			}
		}
		ctx.Values().Set("username", claims.Username)
		ctx.Next()
	})

	// ---------- 订单管理 ----------

	// 订单列表：无搜索词时整表重载镜像，带搜索词时只过滤当前镜像
	authAPI.Get("/orders", func(ctx iris.Context) {
		term := ctx.URLParam("q")
		if term == "" {
			if err := adminSvc.RefreshOrders(ctx.Request().Context()); err != nil {
				ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
				return
			}
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"orders": adminSvc.SearchOrders(term),
			"stats":  adminSvc.Stats(),
		}})
	})

	// 修改订单状态（内联下拉框）
	authAPI.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := adminSvc.UpdateOrderStatus(ctx.Request().Context(), int64(id), status); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"stats": adminSvc.Stats()}})
	})

	// 删除订单，必须带 confirm=1（前端确认弹窗的服务端兜底）
	authAPI.Delete("/orders/{id:uint64}", func(ctx iris.Context) {
		if ctx.URLParam("confirm") != "1" {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "confirmation required"})
			return
		}
		id, _ := ctx.Params().GetUint64("id")
		if err := adminSvc.DeleteOrder(ctx.Request().Context(), int64(id)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"stats": adminSvc.Stats()}})
	})

	authAPI.Get("/stats", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": adminSvc.Stats()})
	})

	// ---------- 商品管理 ----------

	authAPI.Get("/products", func(ctx iris.Context) {
		if err := adminSvc.RefreshProducts(ctx.Request().Context()); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": adminSvc.Products()})
	})

	authAPI.Post("/products", func(ctx iris.Context) {
		var req service.ProductFields
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := adminSvc.SaveProduct(ctx.Request().Context(), 0, &req)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	authAPI.Put("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req service.ProductFields
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := adminSvc.SaveProduct(ctx.Request().Context(), int64(id), &req)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	authAPI.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		if ctx.URLParam("confirm") != "1" {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "confirmation required"})
			return
		}
		id, _ := ctx.Params().GetUint64("id")
		if err := adminSvc.DeleteProduct(ctx.Request().Context(), int64(id)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 监控 ----------

	authAPI.Get("/monitor", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().Snapshot()})
	})
}
