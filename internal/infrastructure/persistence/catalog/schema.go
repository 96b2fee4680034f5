package catalog

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// 表名需与 relational 包中gorm模型的 TableName() 保持一致
const (
	tableBooks      = "books"
	tableBooksInfo  = "books_info"
	tableCategories = "categories"
	tableTargetAges = "target_ages"
	tableBookTypes  = "book_types"
	tableImages     = "images"
	tableReviews    = "reviews"
	tableUsers      = "users"

	aliasReviewStats = "review_stats"
	aliasCandidates  = "candidates"
)

var (
	tBooks       = goqu.T(tableBooks)
	tBooksInfo   = goqu.T(tableBooksInfo)
	tReviews     = goqu.T(tableReviews)
	tUsers       = goqu.T(tableUsers)
	tReviewStats = goqu.T(aliasReviewStats)

	colBookID = tBooks.Col("id")
)

// actualPrice ROUND(books.price * (1 - books.discount))
// 筛选、排序、展示共用同一个表达式
var actualPrice = goqu.Func("ROUND",
	goqu.L("? * (1 - ?)", tBooks.Col("price"), tBooks.Col("discount")),
)

// rate 平均评分，无评论时为0；只在连接了 review_stats 的查询中可用
var rate = goqu.COALESCE(tReviewStats.Col("rate"), 0)

// reviewStats 每本书的平均评分
// SELECT book_id, AVG(COALESCE(rate, 0)) AS rate FROM reviews GROUP BY book_id
func reviewStats(d goqu.DialectWrapper) *goqu.SelectDataset {
	return d.From(tReviews).
		Select(
			tReviews.Col("book_id"),
			goqu.AVG(goqu.COALESCE(tReviews.Col("rate"), 0)).As("rate"),
		).
		GroupBy(tReviews.Col("book_id"))
}

// bookColumns 列表页选出的列，别名与 bookRow 的db标签对应
var bookColumns = []interface{}{
	colBookID.As("id"),
	tBooks.Col("title").As("title"),
	tBooks.Col("author").As("author"),
	tBooks.Col("genre").As("genre"),
	tBooks.Col("language").As("language"),
	tBooks.Col("original_language").As("original_language"),
	tBooks.Col("price").As("price"),
	tBooks.Col("discount").As("discount"),
	tBooks.Col("stock_quantity").As("stock_quantity"),
	tBooks.Col("is_bestseller").As("is_bestseller"),
	tBooks.Col("is_publish").As("is_publish"),
	tBooks.Col("is_gifted").As("is_gifted"),
	tBooks.Col("is_available").As("is_available"),
	tBooks.Col("created_at").As("created_at"),
	tBooks.Col("updated_at").As("updated_at"),

	tBooksInfo.Col("id").As("info_id"),
	tBooksInfo.Col("original_title").As("original_title"),
	tBooksInfo.Col("series").As("series"),
	tBooksInfo.Col("publisher").As("publisher"),
	tBooksInfo.Col("publication_year").As("publication_year"),
	tBooksInfo.Col("page_count").As("page_count"),
	tBooksInfo.Col("paper_type").As("paper_type"),
	tBooksInfo.Col("translator").As("translator"),
	tBooksInfo.Col("cover_type").As("cover_type"),
	tBooksInfo.Col("weight").As("weight"),
	tBooksInfo.Col("dimensions").As("dimensions"),
	tBooksInfo.Col("isbn").As("isbn"),
	tBooksInfo.Col("article_number").As("article_number"),
	tBooksInfo.Col("description").As("description"),

	actualPrice.As("actual_price"),
	rate.As("rate"),
}

// tagTable 一对多标签表
type tagTable struct {
	table  string
	column string
	// ordered 按首次写入顺序返回（图片的第一张是封面），否则按值排序
	ordered bool
}

var (
	categoriesTable = tagTable{table: tableCategories, column: "category"}
	targetAgesTable = tagTable{table: tableTargetAges, column: "target_age"}
	bookTypesTable  = tagTable{table: tableBookTypes, column: "book_type"}
	imagesTable     = tagTable{table: tableImages, column: "image_url", ordered: true}
)

// joinAlias 筛选专用别名，避免与聚合阶段的表名冲突
func (t tagTable) joinAlias() exp.IdentifierExpression {
	return goqu.T("f_" + t.table)
}
