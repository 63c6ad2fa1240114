package main

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/freshharvest/internal/config"
	"github.com/example/freshharvest/internal/server"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
