package catalog

import (
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/xiebiao/kidsbook/internal/domain/book"
)

// Filter 作用于候选集查询（SELECT DISTINCT books.id ...）的谓词
// Apply 是纯函数：goqu的dataset不可变，返回新的dataset
type Filter interface {
	Name() string
	Apply(ds *goqu.SelectDataset) *goqu.SelectDataset
}

// ApplyFilters 依次应用所有筛选条件（AND）
func ApplyFilters(ds *goqu.SelectDataset, filters []Filter) *goqu.SelectDataset {
	for _, f := range filters {
		ds = f.Apply(ds)
	}
	return ds
}

func contains(col string, needle string) goqu.Expression {
	return tBooks.Col(col).ILike("%" + needle + "%")
}

// AuthorFilter 作者模糊匹配（不区分大小写）
type AuthorFilter struct{ Author string }

func (AuthorFilter) Name() string { return book.ParamAuthor }
func (f AuthorFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(contains("author", f.Author))
}

// TitleFilter 书名模糊匹配（不区分大小写）
type TitleFilter struct{ Title string }

func (TitleFilter) Name() string { return book.ParamTitle }
func (f TitleFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(contains("title", f.Title))
}

type GenreFilter struct{ Genre book.Genre }

func (GenreFilter) Name() string { return book.ParamGenre }
func (f GenreFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(tBooks.Col("genre").Eq(string(f.Genre)))
}

type LanguageFilter struct{ Language book.Language }

func (LanguageFilter) Name() string { return book.ParamLanguage }
func (f LanguageFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(tBooks.Col("language").Eq(string(f.Language)))
}

// PaperTypeFilter 与 CoverTypeFilter 作用在 books_info 上，用子查询避免重复连接
type PaperTypeFilter struct{ PaperType book.PaperType }

func (PaperTypeFilter) Name() string { return book.ParamPaperType }
func (f PaperTypeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(colBookID.In(infoBookIDs(ds, "paper_type", string(f.PaperType))))
}

type CoverTypeFilter struct{ CoverType book.CoverType }

func (CoverTypeFilter) Name() string { return book.ParamCoverType }
func (f CoverTypeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(colBookID.In(infoBookIDs(ds, "cover_type", string(f.CoverType))))
}

// infoBookIDs SELECT book_id FROM books_info WHERE <col> = ?
// 子查询沿用外层dataset的方言
func infoBookIDs(ds *goqu.SelectDataset, col, value string) *goqu.SelectDataset {
	return goqu.Dialect(ds.Dialect().Dialect()).
		From(tBooksInfo).
		Select(tBooksInfo.Col("book_id")).
		Where(tBooksInfo.Col(col).Eq(value))
}

// tagFilter 标签维度：内连接标签表 + IN，即同一维度内多个值为 OR
type tagFilter struct {
	table  tagTable
	values []string
}

func (f tagFilter) apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	alias := f.table.joinAlias()
	return ds.
		InnerJoin(
			goqu.T(f.table.table).As(alias.GetTable()),
			goqu.On(alias.Col("book_id").Eq(colBookID)),
		).
		Where(alias.Col(f.table.column).In(f.values))
}

type CategoriesFilter struct{ Categories []book.Category }

func (CategoriesFilter) Name() string { return book.ParamCategories }
func (f CategoriesFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return tagFilter{table: categoriesTable, values: toStrings(f.Categories)}.apply(ds)
}

type TargetAgesFilter struct{ TargetAges []book.TargetAge }

func (TargetAgesFilter) Name() string { return book.ParamTargetAges }
func (f TargetAgesFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return tagFilter{table: targetAgesTable, values: toStrings(f.TargetAges)}.apply(ds)
}

type BookTypeFilter struct{ BookTypes []book.BookType }

func (BookTypeFilter) Name() string { return book.ParamBookType }
func (f BookTypeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return tagFilter{table: bookTypesTable, values: toStrings(f.BookTypes)}.apply(ds)
}

// DiscountRangeFilter Min <= discount <= Max
type DiscountRangeFilter struct{ Min, Max float64 }

func (DiscountRangeFilter) Name() string { return "discount_range" }
func (f DiscountRangeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	col := tBooks.Col("discount")
	return ds.Where(col.Gte(f.Min), col.Lte(f.Max))
}

// PriceRangeFilter 按折后价筛选，Min <= actual_price <= Max
type PriceRangeFilter struct{ Min, Max float64 }

func (PriceRangeFilter) Name() string { return "price_range" }
func (f PriceRangeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Where(actualPrice.Gte(f.Min), actualPrice.Lte(f.Max))
}

// CreatedAtRangeFilter After <= created_at <= Before
type CreatedAtRangeFilter struct{ After, Before time.Time }

func (CreatedAtRangeFilter) Name() string { return "created_at_range" }
func (f CreatedAtRangeFilter) Apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	col := tBooks.Col("created_at")
	return ds.Where(col.Gte(f.After), col.Lte(f.Before))
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
