package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appuser "github.com/xiebiao/kidsbook/internal/application/user"
	"github.com/xiebiao/kidsbook/internal/interface/http/dto"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/response"
)

// 用例端口，便于在测试中替换
type (
	Registerer interface {
		Execute(ctx context.Context, req appuser.RegisterRequest) (*appuser.UserResponse, error)
	}
	LoginExecutor interface {
		Execute(ctx context.Context, req appuser.LoginRequest) (*appuser.TokenResponse, error)
	}
	TokenRefresher interface {
		Execute(ctx context.Context, req appuser.RefreshRequest) (*appuser.TokenResponse, error)
	}
	LogoutExecutor interface {
		Execute(ctx context.Context, req appuser.LogoutRequest) error
	}
	ProfileGetter interface {
		Execute(ctx context.Context, userID uuid.UUID) (*appuser.UserResponse, error)
	}
	GoogleLogin interface {
		AuthURL(ctx context.Context) (*appuser.GoogleURLResponse, error)
		Callback(ctx context.Context, req appuser.GoogleCallbackRequest) (*appuser.TokenResponse, error)
	}
)

// AuthHandler 注册、登录、Token与个人资料
type AuthHandler struct {
	register Registerer
	login    LoginExecutor
	refresh  TokenRefresher
	logout   LogoutExecutor
	profile  ProfileGetter
	google   GoogleLogin
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(
	register Registerer,
	login LoginExecutor,
	refresh TokenRefresher,
	logout LogoutExecutor,
	profile ProfileGetter,
	google GoogleLogin,
) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		profile:  profile,
		google:   google,
	}
}

// Signup 用户注册
// @Summary      用户注册
// @Description  邮箱注册，手机号可选；密码使用bcrypt加密存储
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.SignupRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱或手机号已被注册"
// @Router       /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.register.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  使用邮箱或手机号加密码登录，返回Access Token与Refresh Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.TokenResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "账号或密码错误"
// @Failure      403 {object} response.Response "该账号需使用Google登录"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.login.Execute(c.Request.Context(), appuser.LoginRequest{
		Login:    req.Login,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh 换发Token
// @Summary      刷新Token
// @Description  Refresh Token只能使用一次，重复使用会使当前会话失效
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=appuser.TokenResponse}
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.refresh.Execute(c.Request.Context(), appuser.RefreshRequest{
		RefreshToken: req.RefreshToken,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 退出登录
// @Summary      退出登录
// @Description  清除Refresh Token，当前Access Token加入黑名单直到过期
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	err := h.logout.Execute(c.Request.Context(), appuser.LogoutRequest{
		UserID:   middleware.MustGetUserID(c),
		TokenID:  claims.ID,
		TokenTTL: claims.TTL(time.Now()),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GoogleLogin 获取Google授权地址
// @Summary      Google登录
// @Description  返回Google同意页地址，state有效期10分钟
// @Tags         认证
// @Produce      json
// @Success      200 {object} response.Response{data=appuser.GoogleURLResponse}
// @Failure      500 {object} response.Response "未启用Google登录"
// @Router       /api/v1/auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	result, err := h.google.AuthURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GoogleCallback Google回调
// @Summary      Google回调
// @Description  校验state后用授权码换取用户信息，按Google ID或邮箱登录，必要时自动注册
// @Tags         认证
// @Produce      json
// @Param        code query string true "授权码"
// @Param        state query string true "登录时下发的state"
// @Success      200 {object} response.Response{data=appuser.TokenResponse}
// @Failure      401 {object} response.Response "state无效"
// @Failure      403 {object} response.Response "邮箱未验证"
// @Failure      500 {object} response.Response "Google服务不可用"
// @Router       /api/v1/auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var q dto.GoogleCallbackQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.ErrInvalidOAuthState)
		return
	}

	result, err := h.google.Callback(c.Request.Context(), appuser.GoogleCallbackRequest{
		Code:     q.Code,
		State:    q.State,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Me 当前用户资料
// @Summary      个人资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.UserResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	result, err := h.profile.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
