package book

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// 可识别的筛选参数（snake_case）
const (
	ParamAuthor          = "author"
	ParamTitle           = "title"
	ParamGenre           = "genre"
	ParamCategories      = "categories"
	ParamTargetAges      = "target_ages"
	ParamBookType        = "book_type"
	ParamPaperType       = "paper_type"
	ParamLanguage        = "language"
	ParamCoverType       = "cover_type"
	ParamDiscountMin     = "discount_min"
	ParamDiscountMax     = "discount_max"
	ParamPriceMin        = "price_min"
	ParamPriceMax        = "price_max"
	ParamCreatedAtAfter  = "created_at_after"
	ParamCreatedAtBefore = "created_at_before"
)

// KnownParams 全部可识别的筛选参数
var KnownParams = []string{
	ParamAuthor, ParamTitle, ParamGenre, ParamCategories, ParamTargetAges,
	ParamBookType, ParamPaperType, ParamLanguage, ParamCoverType,
	ParamDiscountMin, ParamDiscountMax, ParamPriceMin, ParamPriceMax,
	ParamCreatedAtAfter, ParamCreatedAtBefore,
}

// 排序字段
const (
	SortActualPrice     = "actual_price"
	SortRate            = "rate"
	SortPrice           = "price"
	SortDiscount        = "discount"
	SortCreatedAt       = "created_at"
	SortTitle           = "title"
	SortAuthor          = "author"
	SortPublicationYear = "publication_year"
)

// 排序方向
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// 分页约束
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// DateLayout 日期参数规范化后的格式
const DateLayout = "2006-01-02"

// FilterParams 筛选参数：参数名 -> 原始值
// 未出现的键表示不筛选；无法识别的键被忽略
type FilterParams map[string]string

// Get 取参数，空白值视为未提供
func (p FilterParams) Get(name string) (string, bool) {
	v, ok := p[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ListQuery 目录查询
type ListQuery struct {
	Filters   FilterParams
	SortBy    string // snake_case 或 camelCase 均可
	SortOrder string // asc | desc，大小写不敏感
	Limit     int
	Offset    int
}

// Page 一页结果；Total 是分页前的候选集大小
type Page struct {
	Total   int64
	Entries []*CatalogEntry
}

// TotalPages ceil(total / limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// CurrentPage floor(offset / limit) + 1
func CurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// ToSnakeCase actualPrice -> actual_price
func ToSnakeCase(s string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(s, "${1}_${2}"))
}

var yearOnly = regexp.MustCompile(`^\d{4}$`)

// ParseDateBound 接受 YYYY-MM-DD 或四位年份（规范化为当年1月1日）
func ParseDateBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if yearOnly.MatchString(s) {
		s += "-01-01"
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.WithCause(ErrInvalidDate, err)
	}
	return t, nil
}

// normalize 校验并规范化查询：数值区间、日期格式、分页、排序默认值
// 校验失败直接返回，不会走到数据库
func (q ListQuery) normalize() (ListQuery, error) {
	out := q
	out.Filters = make(FilterParams, len(q.Filters))
	for k, v := range q.Filters {
		if _, ok := q.Filters.Get(k); ok {
			out.Filters[k] = strings.TrimSpace(v)
		}
	}

	if out.Limit == 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit < 1 || out.Limit > MaxLimit {
		return ListQuery{}, ErrInvalidLimit
	}
	if out.Offset < 0 {
		return ListQuery{}, ErrInvalidOffset
	}

	for _, name := range []string{ParamDiscountMin, ParamDiscountMax} {
		if err := checkNumber(out.Filters, name, 0, 1, ErrInvalidDiscountParam); err != nil {
			return ListQuery{}, err
		}
	}
	for _, name := range []string{ParamPriceMin, ParamPriceMax} {
		if err := checkNumber(out.Filters, name, 0, -1, ErrInvalidPriceParam); err != nil {
			return ListQuery{}, err
		}
	}
	for _, name := range []string{ParamCreatedAtAfter, ParamCreatedAtBefore} {
		v, ok := out.Filters.Get(name)
		if !ok {
			continue
		}
		t, err := ParseDateBound(v)
		if err != nil {
			return ListQuery{}, err
		}
		out.Filters[name] = t.Format(DateLayout)
	}

	if out.SortBy == "" {
		out.SortBy = SortCreatedAt
	}
	out.SortBy = ToSnakeCase(out.SortBy)
	if out.SortOrder == "" {
		out.SortOrder = OrderDesc
	}
	out.SortOrder = strings.ToLower(out.SortOrder)

	return out, nil
}

// checkNumber max < 0 表示无上限；NaN、Inf 一律拒绝
func checkNumber(p FilterParams, name string, min, max float64, tmpl *apperrors.AppError) error {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < min || (max >= 0 && f > max) {
		return apperrors.WithMessage(tmpl, tmpl.Message+": "+name)
	}
	return nil
}
