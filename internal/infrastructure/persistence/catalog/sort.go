package catalog

import (
	"strings"

	"github.com/doug-martin/goqu/v9/exp"

	"github.com/xiebiao/kidsbook/internal/domain/book"
)

type orderable interface {
	Asc() exp.OrderedExpression
	Desc() exp.OrderedExpression
}

// sortColumns 排序字段 -> 列或聚合表达式
var sortColumns = map[string]orderable{
	book.SortActualPrice:     actualPrice,
	book.SortRate:            rate,
	book.SortPrice:           tBooks.Col("price"),
	book.SortDiscount:        tBooks.Col("discount"),
	book.SortCreatedAt:       tBooks.Col("created_at"),
	book.SortTitle:           tBooks.Col("title"),
	book.SortAuthor:          tBooks.Col("author"),
	book.SortPublicationYear: tBooksInfo.Col("publication_year"),
}

// Order 返回 ORDER BY 子句：主排序键 + books.id 升序兜底
// 未知字段回退到 actual_price；方向只有 desc（不区分大小写）是降序
func Order(sortBy, sortOrder string) []exp.OrderedExpression {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = actualPrice
	}

	primary := col.Asc()
	if strings.EqualFold(sortOrder, book.OrderDesc) {
		primary = col.Desc()
	}
	return []exp.OrderedExpression{primary, colBookID.Asc()}
}
