package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/jwt"
	"github.com/xiebiao/kidsbook/pkg/response"
)

// Context中的key
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// TokenBlacklist 已登出Token的jti集合
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Bearer Token
// 2. 验证签名、过期时间与scope（只接受Access Token）
// 3. 按jti检查黑名单
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		uid, err := claims.UID()
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserID, uid)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole 要求指定角色，须放在 RequireAuth 之后
// SuperAdmin 视为拥有全部角色
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}
		role := user.Role(claims.Role)
		if role == user.RoleSuperAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperrors.ErrForbidden)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*jwt.Claims, error) {
	// 格式：Authorization: Bearer <token>
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, apperrors.ErrUnauthorized
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "Token格式错误")
	}

	claims, err := m.jwtManager.ParseAccessToken(parts[1])
	if err != nil {
		return nil, err
	}

	// 用户已登出或Token被强制失效
	blocked, err := m.blacklist.IsInBlacklist(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	if blocked {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "Token已失效，请重新登录")
	}
	return claims, nil
}

// GetUserID 从Context获取当前登录用户ID，未登录返回 uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if uid, ok := v.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

// GetClaims 从Context获取Access Token的Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uuid.UUID {
	uid := GetUserID(c)
	if uid == uuid.Nil {
		panic("user_id not found in context")
	}
	return uid
}
