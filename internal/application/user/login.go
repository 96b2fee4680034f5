package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/pkg/jwt"
	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// TokenType 固定为bearer
const TokenType = "bearer"

// TokenResponse 登录、刷新、Google回调的统一响应
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // Access Token有效期（秒）
}

// tokenIssuer 签发Token对并记录会话
// 刷新令牌写在用户行上（单会话）；Redis里的会话只是镜像，写失败不影响登录
type tokenIssuer struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	log          *logrus.Logger
}

func newTokenIssuer(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore, log *logrus.Logger) tokenIssuer {
	metrics.InitMetrics()
	return tokenIssuer{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		log:          log,
	}
}

// issue 签发并保存刷新令牌；presented 非空时走轮换校验
func (t tokenIssuer) issue(ctx context.Context, u *user.User, presented, clientIP string) (*TokenResponse, error) {
	pair, err := t.jwtManager.GenerateTokenPair(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	if presented == "" {
		err = t.userService.SaveRefreshToken(ctx, u.ID, pair.RefreshToken)
	} else {
		err = t.userService.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	}
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"user_id":      u.ID.String(),
		"email":        u.Email,
		"login_method": string(u.LoginMethod),
		"login_at":     time.Now().Unix(),
		"ip":           clientIP,
	}
	if err := t.sessionStore.SaveSession(ctx, u.ID, session, t.jwtManager.RefreshTokenTTL()); err != nil {
		t.log.WithError(err).WithField("user_id", u.ID).Warn("保存会话失败")
	}

	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LoginUseCase 用户登录用例
// 设计说明：
// 1. login 可以是邮箱或手机号
// 2. Google账号不能用密码登录
// 3. 登录成功即覆盖之前的会话
type LoginUseCase struct {
	userService user.Service
	issuer      tokenIssuer
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	log *logrus.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		issuer:      newTokenIssuer(userService, jwtManager, sessionStore, log),
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Login    string
	Password string
	ClientIP string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (resp *TokenResponse, err error) {
	defer func() { metrics.RecordAuth("login", err) }()

	u, err := uc.userService.Login(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}
	return uc.issuer.issue(ctx, u, "", req.ClientIP)
}

// RefreshTokenUseCase 用Refresh Token换发新Token对
type RefreshTokenUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	issuer      tokenIssuer
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	log *logrus.Logger,
) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		issuer:      newTokenIssuer(userService, jwtManager, sessionStore, log),
	}
}

// RefreshRequest 刷新请求
type RefreshRequest struct {
	RefreshToken string
	ClientIP     string
}

// Execute 令牌必须是refresh用途且与已保存的一致；不一致时会话被作废
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, req RefreshRequest) (resp *TokenResponse, err error) {
	defer func() { metrics.RecordAuth("refresh", err) }()

	claims, err := uc.jwtManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UID()
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.issuer.issue(ctx, u, req.RefreshToken, req.ClientIP)
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	userService  user.Service
	sessionStore SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(userService user.Service, sessionStore SessionStore) *LogoutUseCase {
	metrics.InitMetrics()
	return &LogoutUseCase{userService: userService, sessionStore: sessionStore}
}

// LogoutRequest 来自认证中间件解析出的Access Token
type LogoutRequest struct {
	UserID   uuid.UUID
	TokenID  string        // jti
	TokenTTL time.Duration // 距离过期的剩余时间
}

// Execute 清空刷新令牌，Access Token进黑名单直到过期，删除会话
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) (err error) {
	defer func() { metrics.RecordAuth("logout", err) }()

	if err := uc.userService.ClearRefreshToken(ctx, req.UserID); err != nil {
		return err
	}
	if err := uc.sessionStore.AddToBlacklist(ctx, req.TokenID, req.TokenTTL); err != nil {
		return err
	}
	return uc.sessionStore.DeleteSession(ctx, req.UserID)
}
