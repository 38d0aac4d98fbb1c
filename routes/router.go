package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/simpleblog/config"
	"github.com/cppla/simpleblog/controllers"
	"github.com/cppla/simpleblog/middleware"
	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *services.Services) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl := accessLogger(cfg)
	r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthRequired(svc.Auth)
	authController := controllers.NewAuthController(svc.Auth, svc.Users)
	postController := controllers.NewPostController(svc.Posts, cfg.SanitizeHTML)
	statsController := controllers.NewStatsController(svc.Users, svc.Posts)

	authGroup := r.Group("/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.DELETE("/me", authRequired, authController.DeleteMe)

	r.GET("/foo", authRequired, authController.Foo)
	r.GET("/stats", statsController.GetStats)

	postsGroup := r.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)

	writes := postsGroup.Group("")
	if cfg.PostsRequireAuth {
		writes.Use(authRequired)
	}
	writes.POST("", postController.CreatePost)
	writes.PATCH("/:id", postController.EditPost)
	writes.DELETE("/:id", postController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found", nil)
	})

	return r
}

// accessLogger writes the gin access log to its own rolling file, or to the
// application logger when no path is configured.
func accessLogger(cfg config.AppConfig) *zap.Logger {
	if cfg.GinPath == "" {
		return utils.Logger
	}
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		utils.Sugar.Warnf("gin access log disabled, falling back to app logger: %v", err)
		return utils.Logger
	}
	return gl
}
