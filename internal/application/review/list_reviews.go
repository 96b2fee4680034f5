package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/kidsbook/internal/domain/review"
)

// ListReviewsUseCase 评论查询
// 一本书的评论与当前用户的评论共用一个用例
type ListReviewsUseCase struct {
	reviewService review.Service
}

// NewListReviewsUseCase 创建评论查询用例
func NewListReviewsUseCase(reviewService review.Service) *ListReviewsUseCase {
	return &ListReviewsUseCase{reviewService: reviewService}
}

// ByBook 按创建时间倒序；没有评论返回 ErrReviewNotFound
func (uc *ListReviewsUseCase) ByBook(ctx context.Context, bookID uuid.UUID) ([]*ReviewResponse, error) {
	views, err := uc.reviewService.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toResponses(views), nil
}

// Mine 当前用户的评论，可以为空
func (uc *ListReviewsUseCase) Mine(ctx context.Context, userID uuid.UUID) ([]*ReviewResponse, error) {
	views, err := uc.reviewService.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(views), nil
}
