package catalog

import (
	"strconv"
	"time"

	"github.com/xiebiao/kidsbook/internal/domain/book"
)

// 区间缺省边界
const (
	discountFloor = 0.0
	discountCeil  = 1.0
	priceFloor    = 0.0
	priceCeil     = 999999.0
)

// constructor 由参数集合构造筛选条件；ok=false 表示该参数不产生约束
type constructor func(p book.FilterParams, now time.Time) (f Filter, ok bool)

// filterTable 参数名 -> 构造函数
// 顺序固定，保证生成的SQL稳定；区间的两个端点共用一个构造函数
var filterTable = []struct {
	param string
	build constructor
}{
	{book.ParamAuthor, newAuthorFilter},
	{book.ParamTitle, newTitleFilter},
	{book.ParamGenre, newGenreFilter},
	{book.ParamLanguage, newLanguageFilter},
	{book.ParamPaperType, newPaperTypeFilter},
	{book.ParamCoverType, newCoverTypeFilter},
	{book.ParamCategories, newCategoriesFilter},
	{book.ParamTargetAges, newTargetAgesFilter},
	{book.ParamBookType, newBookTypeFilter},
	{book.ParamDiscountMin, newDiscountRange},
	{book.ParamDiscountMax, newDiscountRange},
	{book.ParamPriceMin, newPriceRange},
	{book.ParamPriceMax, newPriceRange},
	{book.ParamCreatedAtAfter, newCreatedAtRange},
	{book.ParamCreatedAtBefore, newCreatedAtRange},
}

// BuildFilters 按表构造所有适用的筛选条件
// 未识别的参数、空值、无法解析的枚举都被跳过
func BuildFilters(p book.FilterParams, now time.Time) []Filter {
	var filters []Filter
	built := make(map[string]struct{})
	for _, entry := range filterTable {
		if _, ok := p.Get(entry.param); !ok {
			continue
		}
		f, ok := entry.build(p, now)
		if !ok {
			continue
		}
		if _, dup := built[f.Name()]; dup {
			continue
		}
		built[f.Name()] = struct{}{}
		filters = append(filters, f)
	}
	return filters
}

func newAuthorFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, ok := p.Get(book.ParamAuthor)
	return AuthorFilter{Author: v}, ok
}

func newTitleFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, ok := p.Get(book.ParamTitle)
	return TitleFilter{Title: v}, ok
}

func newGenreFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamGenre)
	g, ok := book.ParseGenre(v)
	return GenreFilter{Genre: g}, ok
}

func newLanguageFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamLanguage)
	l, ok := book.ParseLanguage(v)
	return LanguageFilter{Language: l}, ok
}

func newPaperTypeFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamPaperType)
	pt, ok := book.ParsePaperType(v)
	return PaperTypeFilter{PaperType: pt}, ok
}

func newCoverTypeFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamCoverType)
	ct, ok := book.ParseCoverType(v)
	return CoverTypeFilter{CoverType: ct}, ok
}

func newCategoriesFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamCategories)
	values := book.ParseCategories(v)
	return CategoriesFilter{Categories: values}, len(values) > 0
}

func newTargetAgesFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamTargetAges)
	values := book.ParseTargetAges(v)
	return TargetAgesFilter{TargetAges: values}, len(values) > 0
}

func newBookTypeFilter(p book.FilterParams, _ time.Time) (Filter, bool) {
	v, _ := p.Get(book.ParamBookType)
	values := book.ParseBookTypes(v)
	return BookTypeFilter{BookTypes: values}, len(values) > 0
}

func newDiscountRange(p book.FilterParams, _ time.Time) (Filter, bool) {
	return DiscountRangeFilter{
		Min: floatOr(p, book.ParamDiscountMin, discountFloor),
		Max: floatOr(p, book.ParamDiscountMax, discountCeil),
	}, true
}

func newPriceRange(p book.FilterParams, _ time.Time) (Filter, bool) {
	return PriceRangeFilter{
		Min: floatOr(p, book.ParamPriceMin, priceFloor),
		Max: floatOr(p, book.ParamPriceMax, priceCeil),
	}, true
}

func newCreatedAtRange(p book.FilterParams, now time.Time) (Filter, bool) {
	return CreatedAtRangeFilter{
		After:  dateOr(p, book.ParamCreatedAtAfter, time.Unix(0, 0).UTC()),
		Before: dateOr(p, book.ParamCreatedAtBefore, now.UTC()),
	}, true
}

func floatOr(p book.FilterParams, name string, def float64) float64 {
	v, ok := p.Get(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func dateOr(p book.FilterParams, name string, def time.Time) time.Time {
	v, ok := p.Get(name)
	if !ok {
		return def
	}
	t, err := book.ParseDateBound(v)
	if err != nil {
		return def
	}
	return t
}
