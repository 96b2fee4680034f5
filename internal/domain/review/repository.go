package review

import (
	"context"

	"github.com/google/uuid"
)

// Repository 评论仓储接口
type Repository interface {
	Create(ctx context.Context, r *Review) error

	// FindOwned 按 id AND user_id 查找；不属于该用户同样返回 ErrReviewNotFound
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*Review, error)

	Update(ctx context.Context, r *Review) error

	// DeleteOwned 按 id AND user_id 删除；未命中返回 ErrReviewNotFound
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error

	// FindView 带作者信息
	FindView(ctx context.Context, id uuid.UUID) (*View, error)

	// ListByBook 按创建时间倒序
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*View, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*View, error)
}

// BookChecker 发表评论前确认图书存在
type BookChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor 事务边界；fn 内的仓储调用共享同一事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
