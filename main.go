package main

import (
	"context"

	"github.com/cppla/simpleblog/config"
	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/routes"
	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(&models.User{}, &models.Session{}, &models.Post{})
	rc := utils.NewRedis(cfg)
	if rc != nil {
		defer rc.Close()
	}

	svc := services.New(db, rc, cfg)
	r := routes.SetupRouter(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Best-effort removal of sessions that expired without a logout
	utils.StartCleaner(ctx, "session", cfg.SessionCleanupInterval(), svc.Sessions.PurgeExpired)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
