// Package router 组装gin引擎：全局中间件、系统路由与 /api/v1 业务路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/internal/interface/http/handler"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
)

// Handlers 各模块的HTTP处理器
type Handlers struct {
	Book   *handler.BookHandler
	Review *handler.ReviewHandler
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

// New 创建gin引擎并注册全部路由
// limiter 为nil时认证接口不限流
func New(
	cfg *config.Config,
	log *logrus.Logger,
	h Handlers,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	// 顺序：Recovery -> Tracing -> Logger（日志里能带上trace_id）-> Metrics -> CORS
	r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/api/healthchecker", h.Health.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 认证
	authGroup := v1.Group("/auth")
	{
		limited := authGroup.Group("", limiter.Middleware())
		limited.POST("/signup", h.Auth.Signup)
		limited.POST("/login", h.Auth.Login)
		limited.POST("/refresh", h.Auth.Refresh)

		authGroup.GET("/google/login", h.Auth.GoogleLogin)
		authGroup.GET("/google/callback", h.Auth.GoogleCallback)
		authGroup.POST("/logout", auth.RequireAuth(), h.Auth.Logout)
	}

	v1.GET("/users/me", auth.RequireAuth(), h.Auth.Me)

	// 图书目录（公开）
	books := v1.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/:id/reviews", h.Review.ListBookReviews)
		books.POST("", auth.RequireAuth(), auth.RequireRole(user.RoleAdmin), h.Book.AddBook)
	}

	// 评论（需要登录）
	reviews := v1.Group("/reviews", auth.RequireAuth())
	{
		reviews.POST("", h.Review.PostReview)
		reviews.GET("/me", h.Review.ListMyReviews)
		reviews.PUT("/:id", h.Review.UpdateReview)
		reviews.DELETE("/:id", h.Review.DeleteReview)
	}

	return r
}
