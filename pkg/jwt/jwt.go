package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// Token用途，写在 scope 声明里，防止拿Refresh Token当Access Token用
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// Manager JWT管理器
// 双Token机制：Access Token（短期，API鉴权）+ Refresh Token（长期，换发新Token对）
type Manager struct {
	secret             []byte
	issuer             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
	now                func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret, issuer string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             []byte(secret),
		issuer:             issuer,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
		now:                time.Now,
	}
}

// RefreshTokenTTL 会话在Redis中的保留时间与之一致
func (m *Manager) RefreshTokenTTL() time.Duration {
	return m.refreshTokenExpire
}

// Claims 自定义JWT Claims
// ID(jti) 每次签发都不同，用作黑名单的key
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// UID 解析 user_id
func (c *Claims) UID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, apperrors.WithCause(apperrors.ErrInvalidToken, err)
	}
	return id, nil
}

// TTL 距离过期的剩余时间
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // Access Token有效期（秒）
}

// GenerateTokenPair 签发Token对；Refresh Token只带 user_id
func (m *Manager) GenerateTokenPair(userID uuid.UUID, email, role string) (*TokenPair, error) {
	now := m.now()

	access, err := m.sign(Claims{
		UserID:           userID.String(),
		Email:            email,
		Role:             role,
		Scope:            ScopeAccess,
		RegisteredClaims: m.registered(userID, now, m.accessTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	refresh, err := m.sign(Claims{
		UserID:           userID.String(),
		Scope:            ScopeRefresh,
		RegisteredClaims: m.registered(userID, now, m.refreshTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

func (m *Manager) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccessToken 解析Access Token
func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, ScopeAccess)
}

// ParseRefreshToken 解析Refresh Token
func (m *Manager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, ScopeRefresh)
}

// parse 校验签名、算法、过期时间、签发者和用途
func (m *Manager) parse(tokenString, scope string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WithCause(apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Scope != scope {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
