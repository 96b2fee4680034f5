package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service 评论领域服务
type Service interface {
	// Post 发表评论；图书不存在时返回 ErrBookNotFound 且不落库
	Post(ctx context.Context, userID, bookID uuid.UUID, text string, rate decimal.Decimal) (*View, error)

	// Edit 只能修改自己的评论；他人的评论视为不存在
	Edit(ctx context.Context, userID, id uuid.UUID, text *string, rate *decimal.Decimal) (*View, error)

	// Remove 只能删除自己的评论
	Remove(ctx context.Context, userID, id uuid.UUID) error

	// ListByBook 没有评论时返回 ErrReviewNotFound
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*View, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*View, error)
}

type service struct {
	repo  Repository
	books BookChecker
	tx    Transactor
}

// NewService 创建评论服务
func NewService(repo Repository, books BookChecker, tx Transactor) Service {
	return &service{repo: repo, books: books, tx: tx}
}

func (s *service) Post(ctx context.Context, userID, bookID uuid.UUID, text string, rate decimal.Decimal) (*View, error) {
	r, err := NewReview(bookID, userID, text, rate)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		ok, err := s.books.Exists(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBookNotFound
		}
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindView(ctx, r.ID)
}

func (s *service) Edit(ctx context.Context, userID, id uuid.UUID, text *string, rate *decimal.Decimal) (*View, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.FindOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := r.Edit(text, rate); err != nil {
			return err
		}
		return s.repo.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindView(ctx, id)
}

func (s *service) Remove(ctx context.Context, userID, id uuid.UUID) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteOwned(ctx, id, userID)
	})
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*View, error) {
	views, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrReviewNotFound
	}
	return views, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*View, error) {
	return s.repo.ListByUser(ctx, userID)
}
