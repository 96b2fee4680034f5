package catalog

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // 方言注册
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // 方言注册
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // 方言注册
	"github.com/jmoiron/sqlx"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// Catalog 目录查询（book.Catalog 的SQL实现）
// 流程：筛选出候选id -> 计数 -> 排序分页并连接派生列 -> 按页内id聚合子资源
// 整个过程在一个请求级事务里完成，结束时总是回滚释放连接
type Catalog struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	now     func() time.Time
}

// Option 可选配置
type Option func(*Catalog)

// WithClock 替换时钟（created_at 区间的缺省上界）
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// NewCatalog 创建目录查询；方言由 db.DriverName() 推断
func NewCatalog(db *sqlx.DB, opts ...Option) *Catalog {
	c := &Catalog{
		db:      db,
		dialect: goqu.Dialect(DialectFor(db.DriverName())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ book.Catalog = (*Catalog)(nil)

// List 实现 book.Catalog
func (c *Catalog) List(ctx context.Context, q book.ListQuery) (*book.Page, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	defer tx.Rollback() //nolint:errcheck // 只读事务，回滚即释放

	candidates := c.Candidates(q.Filters)

	total, err := c.count(ctx, tx, candidates)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &book.Page{Total: 0, Entries: []*book.CatalogEntry{}}, nil
	}

	rows, err := c.page(ctx, tx, candidates, q)
	if err != nil {
		return nil, err
	}

	entries := make([]*book.CatalogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntry()
	}
	if err := c.attachChildren(ctx, tx, entries); err != nil {
		return nil, err
	}

	return &book.Page{Total: total, Entries: entries}, nil
}

// Candidates 候选集：SELECT DISTINCT books.id FROM books + 所有筛选条件
func (c *Catalog) Candidates(params book.FilterParams) *goqu.SelectDataset {
	base := c.dialect.From(tBooks).Select(colBookID).Distinct()
	return ApplyFilters(base, BuildFilters(params, c.now()))
}

func (c *Catalog) count(ctx context.Context, tx *sqlx.Tx, candidates *goqu.SelectDataset) (int64, error) {
	query, args, err := c.dialect.
		From(candidates.As(aliasCandidates)).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, apperrors.Wrap(err, "构建计数查询失败")
	}

	var total int64
	if err := tx.GetContext(ctx, &total, query, args...); err != nil {
		return 0, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return total, nil
}

// pageQuery 列表页查询：派生列与候选集使用同一套表达式
func (c *Catalog) pageQuery(candidates *goqu.SelectDataset, q book.ListQuery) *goqu.SelectDataset {
	return c.dialect.From(tBooks).
		Select(bookColumns...).
		LeftJoin(tBooksInfo, goqu.On(tBooksInfo.Col("book_id").Eq(colBookID))).
		LeftJoin(
			reviewStats(c.dialect).As(aliasReviewStats),
			goqu.On(tReviewStats.Col("book_id").Eq(colBookID)),
		).
		Where(colBookID.In(candidates)).
		Order(Order(q.SortBy, q.SortOrder)...).
		Limit(uint(q.Limit)).
		Offset(uint(q.Offset))
}

func (c *Catalog) page(ctx context.Context, tx *sqlx.Tx, candidates *goqu.SelectDataset, q book.ListQuery) ([]bookRow, error) {
	query, args, err := c.pageQuery(candidates, q).Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.Wrap(err, "构建列表查询失败")
	}

	var rows []bookRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return rows, nil
}
