package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/kidsbook/internal/domain/user"
)

// SessionStore 会话、黑名单、OAuth state（Redis实现）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uuid.UUID, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uuid.UUID) error
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeOAuthState 原子地取出并删除；不存在返回false
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}

// OAuthProvider 第三方授权码登录
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*user.GoogleProfile, error)
}

// UserResponse 用户资料（不含密码和令牌）
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber *string   `json:"phoneNumber"`
	Role        string    `json:"role"`
	LoginMethod string    `json:"loginMethod"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		LoginMethod: string(u.LoginMethod),
		Avatar:      u.Avatar,
		CreatedAt:   u.CreatedAt,
	}
}
