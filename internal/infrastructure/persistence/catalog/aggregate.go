package catalog

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// attachChildren 为页内图书挂上标签、图片和评论
// 只查询页内id，按book_id分组；空值丢弃，没有数据时保持空数组
func (c *Catalog) attachChildren(ctx context.Context, tx *sqlx.Tx, entries []*book.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[string]*book.CatalogEntry, len(entries))
	ids := make([]interface{}, len(entries))
	for i, e := range entries {
		key := normalizeID(e.ID.String())
		byID[key] = e
		ids[i] = e.ID.String()
	}

	categories, err := c.loadTags(ctx, tx, categoriesTable, ids)
	if err != nil {
		return err
	}
	targetAges, err := c.loadTags(ctx, tx, targetAgesTable, ids)
	if err != nil {
		return err
	}
	bookTypes, err := c.loadTags(ctx, tx, bookTypesTable, ids)
	if err != nil {
		return err
	}
	images, err := c.loadTags(ctx, tx, imagesTable, ids)
	if err != nil {
		return err
	}

	for key, e := range byID {
		for _, v := range categories[key] {
			e.Categories = append(e.Categories, book.Category(v))
		}
		for _, v := range targetAges[key] {
			e.TargetAges = append(e.TargetAges, book.TargetAge(v))
		}
		for _, v := range bookTypes[key] {
			e.BookTypes = append(e.BookTypes, book.BookType(v))
		}
		e.Images = append(e.Images, images[key]...)
	}

	return c.attachReviews(ctx, tx, ids, byID)
}

// loadTags SELECT DISTINCT book_id, <col> AS value FROM <table> WHERE book_id IN (...)
// ordered 表改为 GROUP BY book_id, <col> ORDER BY MIN(id)，保留首次写入的位置
func (c *Catalog) loadTags(ctx context.Context, tx *sqlx.Tx, t tagTable, ids []interface{}) (map[string][]string, error) {
	tbl := goqu.T(t.table)
	ds := c.dialect.From(tbl).
		Select(tbl.Col("book_id"), tbl.Col(t.column).As("value")).
		Where(tbl.Col("book_id").In(ids...), tbl.Col(t.column).IsNotNull())
	if t.ordered {
		ds = ds.GroupBy(tbl.Col("book_id"), tbl.Col(t.column)).
			Order(tbl.Col("book_id").Asc(), goqu.MIN(tbl.Col("id")).Asc())
	} else {
		ds = ds.Distinct().
			Order(tbl.Col("book_id").Asc(), goqu.C("value").Asc())
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.Wrapf(err, "构建%s查询失败", t.table)
	}

	var rows []tagRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}

	grouped := make(map[string][]string)
	for _, r := range rows {
		if !r.Value.Valid || r.Value.String == "" {
			continue
		}
		key := normalizeID(r.BookID)
		grouped[key] = append(grouped[key], r.Value.String)
	}
	return grouped, nil
}

// attachReviews 评论按创建时间倒序，连接用户取展示名和头像
func (c *Catalog) attachReviews(ctx context.Context, tx *sqlx.Tx, ids []interface{}, byID map[string]*book.CatalogEntry) error {
	query, args, err := c.dialect.From(tReviews).
		Select(
			tReviews.Col("id"),
			tReviews.Col("book_id"),
			tReviews.Col("review_text"),
			tReviews.Col("rate"),
			tReviews.Col("created_at"),
			tReviews.Col("updated_at"),
			tReviews.Col("user_id"),
			tUsers.Col("first_name"),
			tUsers.Col("last_name"),
			tUsers.Col("username"),
			tUsers.Col("avatar"),
		).
		LeftJoin(tUsers, goqu.On(tUsers.Col("id").Eq(tReviews.Col("user_id")))).
		Where(tReviews.Col("book_id").In(ids...)).
		Order(tReviews.Col("created_at").Desc(), tReviews.Col("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.Wrap(err, "构建评论查询失败")
	}

	var rows []reviewRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}

	for i := range rows {
		e, ok := byID[normalizeID(rows[i].BookID)]
		if !ok {
			continue
		}
		e.Reviews = append(e.Reviews, rows[i].toSummary())
	}
	return nil
}
