package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/kidsbook/internal/domain/review"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// reviewRepository 评论仓储实现
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	if err := getDB(ctx, r.db).Create(toReviewModel(rv)).Error; err != nil {
		return apperrors.Wrap(err, "创建评论失败")
	}
	return nil
}

// FindOwned 条件同时带上 user_id，他人的评论查不到
func (r *reviewRepository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*review.Review, error) {
	var model ReviewModel
	err := getDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return toReviewEntity(&model), nil
}

// Update 只更新内容与评分
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := getDB(ctx, r.db).Model(&ReviewModel{}).
		Where("id = ?", rv.ID).
		Updates(map[string]interface{}{
			"review_text": rv.Text,
			"rate":        rv.Rate,
			"updated_at":  rv.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	result := getDB(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&ReviewModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) FindView(ctx context.Context, id uuid.UUID) (*review.View, error) {
	var model ReviewModel
	err := getDB(ctx, r.db).Preload("User").Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return toReviewView(&model), nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*review.View, error) {
	return r.list(ctx, "book_id = ?", bookID)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*review.View, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *reviewRepository) list(ctx context.Context, cond string, arg interface{}) ([]*review.View, error) {
	var models []ReviewModel
	err := getDB(ctx, r.db).Preload("User").
		Where(cond, arg).
		Order("created_at DESC").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}

	views := make([]*review.View, len(models))
	for i := range models {
		views[i] = toReviewView(&models[i])
	}
	return views, nil
}

func toReviewModel(rv *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:         rv.ID,
		BookID:     rv.BookID,
		UserID:     rv.UserID,
		ReviewText: rv.Text,
		Rate:       rv.Rate,
		CreatedAt:  rv.CreatedAt,
		UpdatedAt:  rv.UpdatedAt,
	}
}

func toReviewEntity(m *ReviewModel) *review.Review {
	return &review.Review{
		ID:        m.ID,
		BookID:    m.BookID,
		UserID:    m.UserID,
		Text:      m.ReviewText,
		Rate:      m.Rate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// toReviewView 作者已删除时只保留评论本身
func toReviewView(m *ReviewModel) *review.View {
	v := &review.View{Review: *toReviewEntity(m)}
	if m.User != nil {
		v.UserName = toUserEntity(m.User).DisplayName()
		v.Avatar = m.User.Avatar
	}
	return v
}
