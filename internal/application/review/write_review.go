package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/kidsbook/internal/domain/review"
	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// 评论写操作的指标标签
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ReviewResponse 评论 + 作者展示信息
type ReviewResponse struct {
	ID         string          `json:"id"`
	BookID     string          `json:"bookId"`
	ReviewText string          `json:"reviewText"`
	Rate       decimal.Decimal `json:"rate"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	UserID     *string         `json:"userId"`
	UserName   string          `json:"userName"`
	Avatar     string          `json:"avatar"`
}

func toResponse(v *review.View) *ReviewResponse {
	resp := &ReviewResponse{
		ID:         v.ID.String(),
		BookID:     v.BookID.String(),
		ReviewText: v.Text,
		Rate:       v.Rate,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		UserName:   v.UserName,
		Avatar:     v.Avatar,
	}
	if v.UserID != nil {
		uid := v.UserID.String()
		resp.UserID = &uid
	}
	return resp
}

func toResponses(views []*review.View) []*ReviewResponse {
	out := make([]*ReviewResponse, len(views))
	for i, v := range views {
		out[i] = toResponse(v)
	}
	return out
}

// PostReviewUseCase 发表评论
type PostReviewUseCase struct {
	reviewService review.Service
}

// NewPostReviewUseCase 创建发表评论用例
func NewPostReviewUseCase(reviewService review.Service) *PostReviewUseCase {
	metrics.InitMetrics()
	return &PostReviewUseCase{reviewService: reviewService}
}

// PostReviewRequest 发表评论请求
type PostReviewRequest struct {
	UserID     uuid.UUID // 从认证中间件获取
	BookID     uuid.UUID
	ReviewText string
	Rate       decimal.Decimal
}

// Execute 图书不存在时返回 ErrBookNotFound，不落库
func (uc *PostReviewUseCase) Execute(ctx context.Context, req PostReviewRequest) (*ReviewResponse, error) {
	v, err := uc.reviewService.Post(ctx, req.UserID, req.BookID, req.ReviewText, req.Rate)
	metrics.RecordReviewWrite(opCreate, err)
	if err != nil {
		return nil, err
	}
	return toResponse(v), nil
}

// UpdateReviewUseCase 修改评论
type UpdateReviewUseCase struct {
	reviewService review.Service
}

// NewUpdateReviewUseCase 创建修改评论用例
func NewUpdateReviewUseCase(reviewService review.Service) *UpdateReviewUseCase {
	metrics.InitMetrics()
	return &UpdateReviewUseCase{reviewService: reviewService}
}

// UpdateReviewRequest nil 字段不修改
type UpdateReviewRequest struct {
	UserID     uuid.UUID
	ReviewID   uuid.UUID
	ReviewText *string
	Rate       *decimal.Decimal
}

// Execute 只能修改自己的评论
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (*ReviewResponse, error) {
	v, err := uc.reviewService.Edit(ctx, req.UserID, req.ReviewID, req.ReviewText, req.Rate)
	metrics.RecordReviewWrite(opUpdate, err)
	if err != nil {
		return nil, err
	}
	return toResponse(v), nil
}

// DeleteReviewUseCase 删除评论
type DeleteReviewUseCase struct {
	reviewService review.Service
}

// NewDeleteReviewUseCase 创建删除评论用例
func NewDeleteReviewUseCase(reviewService review.Service) *DeleteReviewUseCase {
	metrics.InitMetrics()
	return &DeleteReviewUseCase{reviewService: reviewService}
}

// Execute 只能删除自己的评论
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, userID, reviewID uuid.UUID) error {
	err := uc.reviewService.Remove(ctx, userID, reviewID)
	metrics.RecordReviewWrite(opDelete, err)
	return err
}
