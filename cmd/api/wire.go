//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成 wire_gen.go

package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	appbook "github.com/xiebiao/kidsbook/internal/application/book"
	appreview "github.com/xiebiao/kidsbook/internal/application/review"
	appuser "github.com/xiebiao/kidsbook/internal/application/user"
	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/internal/domain/review"
	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/internal/infrastructure/health"
	"github.com/xiebiao/kidsbook/internal/infrastructure/oauth"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/catalog"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/relational"
	"github.com/xiebiao/kidsbook/internal/interface/http/handler"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
	"github.com/xiebiao/kidsbook/internal/interface/http/router"
)

// infrastructureSet 数据库、目录查询、Redis、Google
var infrastructureSet = wire.NewSet(
	provideGormDB,
	provideCatalogDB,
	provideCatalog,
	wire.Bind(new(book.Catalog), new(*catalog.Catalog)),
	provideRedisClient,
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	provideGoogleProvider,
	wire.Bind(new(appuser.OAuthProvider), new(*oauth.GoogleProvider)),
	health.NewCheckerFromConfig,
)

// repositorySet 仓储与事务
var repositorySet = wire.NewSet(
	relational.NewUserRepository,
	relational.NewBookRepository,
	relational.NewReviewRepository,
	relational.NewTxManager,
	wire.Bind(new(review.Transactor), new(*relational.TxManager)),
	provideBookChecker,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	review.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewAddBookUseCase,
	appreview.NewPostReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
	appreview.NewListReviewsUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewGetProfileUseCase,
	appuser.NewLoginUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewGoogleLoginUseCase,
	provideGoogleOptions,
)

// middlewareSet JWT、认证与限流
var middlewareSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	middleware.NewRateLimiterFromConfig,
)

// handlerSet 处理器及其端口绑定
var handlerSet = wire.NewSet(
	handler.NewBookHandler,
	wire.Bind(new(handler.BookLister), new(*appbook.ListBooksUseCase)),
	wire.Bind(new(handler.BookAdder), new(*appbook.AddBookUseCase)),

	handler.NewReviewHandler,
	wire.Bind(new(handler.ReviewPoster), new(*appreview.PostReviewUseCase)),
	wire.Bind(new(handler.ReviewUpdater), new(*appreview.UpdateReviewUseCase)),
	wire.Bind(new(handler.ReviewDeleter), new(*appreview.DeleteReviewUseCase)),
	wire.Bind(new(handler.ReviewLister), new(*appreview.ListReviewsUseCase)),

	handler.NewAuthHandler,
	wire.Bind(new(handler.Registerer), new(*appuser.RegisterUseCase)),
	wire.Bind(new(handler.LoginExecutor), new(*appuser.LoginUseCase)),
	wire.Bind(new(handler.TokenRefresher), new(*appuser.RefreshTokenUseCase)),
	wire.Bind(new(handler.LogoutExecutor), new(*appuser.LogoutUseCase)),
	wire.Bind(new(handler.ProfileGetter), new(*appuser.GetProfileUseCase)),
	wire.Bind(new(handler.GoogleLogin), new(*appuser.GoogleLoginUseCase)),

	handler.NewHealthHandler,
	wire.Bind(new(handler.HealthChecker), new(*health.Checker)),

	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装整个应用
// 返回的cleanup按创建的逆序关闭Redis与数据库连接
func InitializeApp(cfg *config.Config, log *logrus.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
