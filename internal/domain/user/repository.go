package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository 用户仓储接口
// 接口定义在domain层，具体实现在 persistence/relational
type Repository interface {
	// Create 创建用户
	// 邮箱或手机号冲突时返回 ErrEmailDuplicate / ErrPhoneDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回 ErrUserNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	FindByPhone(ctx context.Context, phone string) (*User, error)

	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	// Update 更新资料与登录方式
	Update(ctx context.Context, user *User) error

	// SetRefreshToken token 为 nil 表示清空
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}
