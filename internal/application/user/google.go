package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/jwt"
	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// DefaultStateTTL OAuth state 的有效期
const DefaultStateTTL = 10 * time.Minute

// ErrGoogleDisabled 未配置client id/secret
var ErrGoogleDisabled = apperrors.WithMessage(apperrors.ErrOAuthProvider, "未启用Google登录")

// GoogleLoginUseCase Google授权码登录
// 设计说明：
// 1. 发起登录时生成一次性state存入Redis，回调时GETDEL原子消费，防止CSRF与重放
// 2. 按google id查找用户；否则按邮箱绑定已有账号；否则新建
// 3. 成功后签发与本地登录相同的Token对
type GoogleLoginUseCase struct {
	enabled      bool
	stateTTL     time.Duration
	provider     OAuthProvider
	userService  user.Service
	sessionStore SessionStore
	issuer       tokenIssuer
}

// GoogleOptions 开关与state有效期
type GoogleOptions struct {
	Enabled  bool
	StateTTL time.Duration
}

// NewGoogleLoginUseCase 创建Google登录用例
func NewGoogleLoginUseCase(
	opts GoogleOptions,
	provider OAuthProvider,
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	log *logrus.Logger,
) *GoogleLoginUseCase {
	ttl := opts.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &GoogleLoginUseCase{
		enabled:      opts.Enabled,
		stateTTL:     ttl,
		provider:     provider,
		userService:  userService,
		sessionStore: sessionStore,
		issuer:       newTokenIssuer(userService, jwtManager, sessionStore, log),
	}
}

// GoogleURLResponse 同意页地址
type GoogleURLResponse struct {
	URL string `json:"url"`
}

// AuthURL 生成state并返回Google同意页地址
func (uc *GoogleLoginUseCase) AuthURL(ctx context.Context) (*GoogleURLResponse, error) {
	if !uc.enabled {
		return nil, ErrGoogleDisabled
	}

	state := uuid.NewString()
	if err := uc.sessionStore.SaveOAuthState(ctx, state, uc.stateTTL); err != nil {
		return nil, err
	}
	return &GoogleURLResponse{URL: uc.provider.AuthCodeURL(state)}, nil
}

// GoogleCallbackRequest 回调参数
type GoogleCallbackRequest struct {
	Code     string
	State    string
	ClientIP string
}

// Callback state无效返回 ErrInvalidOAuthState；不会调用Google
func (uc *GoogleLoginUseCase) Callback(ctx context.Context, req GoogleCallbackRequest) (resp *TokenResponse, err error) {
	defer func() { metrics.RecordAuth("google", err) }()

	if !uc.enabled {
		return nil, ErrGoogleDisabled
	}
	if req.State == "" || req.Code == "" {
		return nil, apperrors.ErrInvalidOAuthState
	}

	ok, err := uc.sessionStore.ConsumeOAuthState(ctx, req.State)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidOAuthState
	}

	profile, err := uc.provider.Exchange(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.LoginWithGoogle(ctx, *profile)
	if err != nil {
		return nil, err
	}
	return uc.issuer.issue(ctx, u, "", req.ClientIP)
}
