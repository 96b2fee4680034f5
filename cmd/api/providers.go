package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	appuser "github.com/xiebiao/kidsbook/internal/application/user"
	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/internal/domain/review"
	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/internal/infrastructure/health"
	"github.com/xiebiao/kidsbook/internal/infrastructure/oauth"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/catalog"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/relational"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
	"github.com/xiebiao/kidsbook/pkg/jwt"
)

// App 启动所需的全部组件
type App struct {
	Engine  *gin.Engine
	Checker *health.Checker
	Limiter *middleware.RateLimiter
}

// provideGormDB 连接数据库，cleanup时关闭连接池
func provideGormDB(cfg *config.Config, log *logrus.Logger) (*gorm.DB, func(), error) {
	db, err := relational.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideCatalogDB 目录查询与gorm共用同一个连接池
func provideCatalogDB(cfg *config.Config, db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	return catalog.NewDB(sqlDB, cfg.Database.Driver), nil
}

func provideCatalog(db *sqlx.DB) *catalog.Catalog {
	return catalog.NewCatalog(db)
}

func provideRedisClient(cfg *config.Config, log *logrus.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideBookChecker 评论服务只需要图书仓储的Exists
func provideBookChecker(repo book.Repository) review.BookChecker {
	return repo
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideGoogleProvider(cfg *config.Config) *oauth.GoogleProvider {
	return oauth.NewGoogleProvider(cfg)
}

func provideGoogleOptions(cfg *config.Config) appuser.GoogleOptions {
	return appuser.GoogleOptions{
		Enabled:  cfg.Google.Enabled(),
		StateTTL: cfg.Google.StateTTL,
	}
}
