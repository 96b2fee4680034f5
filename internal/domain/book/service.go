package book

import (
	"context"

	"github.com/google/uuid"
)

// Service 图书领域服务接口
type Service interface {
	// ListBooks 按筛选/排序/分页浏览目录
	// 业务规则:
	// - 非法日期、越界数值在查询前拒绝
	// - 没有任何匹配时返回ErrNoBooksFound，而不是空页
	ListBooks(ctx context.Context, q ListQuery) (*Page, error)

	// GetBookByID 根据ID获取图书
	GetBookByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// AddBook 新增图书（数据导入）
	AddBook(ctx context.Context, b *Book, info *BookInfo, tags Tags) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

// NewService 创建图书领域服务
func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) ListBooks(ctx context.Context, q ListQuery) (*Page, error) {
	normalized, err := q.normalize()
	if err != nil {
		return nil, err
	}

	page, err := s.catalog.List(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if page.Total == 0 {
		return nil, ErrNoBooksFound
	}
	return page, nil
}

func (s *service) GetBookByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AddBook(ctx context.Context, b *Book, info *BookInfo, tags Tags) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, b, info, tags)
}
