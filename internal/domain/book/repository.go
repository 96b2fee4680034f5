package book

import (
	"context"

	"github.com/google/uuid"
)

// Repository 图书仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现
type Repository interface {
	// Create 创建图书及其扩展信息与标签（管理端/数据导入使用）
	Create(ctx context.Context, b *Book, info *BookInfo, tags Tags) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// Exists 图书是否存在
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Tags 图书的一对多标签
type Tags struct {
	Categories []Category
	TargetAges []TargetAge
	BookTypes  []BookType
	Images     []string
}

// Catalog 目录查询端口
// 实现方负责：筛选 -> 计数 -> 排序分页 -> 聚合子资源
type Catalog interface {
	// List query 已经过规范化；Total == 0 时 Entries 为空
	List(ctx context.Context, q ListQuery) (*Page, error)
}
