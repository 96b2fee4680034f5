package book

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/pkg/metrics"
	"github.com/xiebiao/kidsbook/pkg/tracing"
)

// ListBooksUseCase 图书目录查询用例
// 设计说明:
// 1. 参数校验、日期规范化在领域服务完成，这里只负责编排与结果组装
// 2. 枚举编码在这里转换为展示名称
// 3. 记录查询耗时与筛选参数使用情况
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建目录查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	metrics.InitMetrics()
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 目录查询请求
type ListBooksRequest struct {
	Filters   map[string]string // snake_case 参数名 -> 原始值
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ListBooksResponse 一页目录
type ListBooksResponse struct {
	TotalBooks  int64      `json:"totalBooks"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	Books       []BookItem `json:"books"`
}

// BookItem 图书及扩展信息、派生列、子资源
type BookItem struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Author           string          `json:"author"`
	Genre            string          `json:"genre"`
	Language         string          `json:"language"`
	OriginalLanguage string          `json:"originalLanguage"`
	Price            decimal.Decimal `json:"price"`
	Discount         decimal.Decimal `json:"discount"`
	ActualPrice      decimal.Decimal `json:"actualPrice"`
	Rate             decimal.Decimal `json:"rate"`
	StockQuantity    int             `json:"stockQuantity"`
	IsBestseller     bool            `json:"isBestseller"`
	IsPublish        bool            `json:"isPublish"`
	IsGifted         bool            `json:"isGifted"`
	IsAvailable      bool            `json:"isAvailable"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`

	OriginalTitle   string           `json:"originalTitle"`
	Series          string           `json:"series"`
	Publisher       string           `json:"publisher"`
	PublicationYear *int             `json:"publicationYear"`
	PageCount       *int             `json:"pageCount"`
	PaperType       string           `json:"paperType"`
	Translator      string           `json:"translator"`
	CoverType       string           `json:"coverType"`
	Weight          *decimal.Decimal `json:"weight"`
	Dimensions      string           `json:"dimensions"`
	ISBN            string           `json:"isbn"`
	ArticleNumber   string           `json:"articleNumber"`
	Description     string           `json:"description"`

	Categories []string     `json:"categories"`
	TargetAges []string     `json:"targetAges"`
	BookType   []string     `json:"bookType"`
	Images     []string     `json:"images"`
	Reviews    []ReviewItem `json:"reviews"`
}

// ReviewItem 列表中内嵌的评论
type ReviewItem struct {
	ID         string          `json:"id"`
	ReviewText string          `json:"reviewText"`
	Rate       decimal.Decimal `json:"rate"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	UserID     *string         `json:"userId"`
	UserName   string          `json:"userName"`
	Avatar     string          `json:"avatar"`
}

// Execute 执行目录查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (resp *ListBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "ListBooks")
	start := time.Now()
	defer func() {
		metrics.ObserveHistogram(metrics.CatalogQueryDuration, time.Since(start).Seconds())
		metrics.IncCounterVec(metrics.CatalogQueriesTotal, map[string]string{"result": queryResult(err)})
		tracing.EndSpan(span, err)
	}()

	filters := make(book.FilterParams, len(req.Filters))
	for k, v := range req.Filters {
		filters[k] = v
	}
	recordFilters(filters)

	span.SetAttributes(
		attribute.String("catalog.sort_by", req.SortBy),
		attribute.String("catalog.sort_order", req.SortOrder),
		attribute.Int("catalog.limit", req.Limit),
		attribute.Int("catalog.offset", req.Offset),
	)

	page, err := uc.bookService.ListBooks(ctx, book.ListQuery{
		Filters:   filters,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("catalog.total", page.Total))

	limit := req.Limit
	if limit == 0 {
		limit = book.DefaultLimit
	}

	items := make([]BookItem, len(page.Entries))
	for i, e := range page.Entries {
		items[i] = toBookItem(e)
	}

	return &ListBooksResponse{
		TotalBooks:  page.Total,
		TotalPages:  book.TotalPages(page.Total, limit),
		CurrentPage: book.CurrentPage(req.Offset, limit),
		Limit:       limit,
		Offset:      req.Offset,
		Books:       items,
	}, nil
}

func queryResult(err error) string {
	if errors.Is(err, book.ErrNoBooksFound) {
		return metrics.ResultEmpty
	}
	return metrics.Result(err)
}

func recordFilters(p book.FilterParams) {
	for _, name := range book.KnownParams {
		if _, ok := p.Get(name); ok {
			metrics.IncCounterVec(metrics.CatalogFiltersTotal, map[string]string{"filter": name})
		}
	}
}

// label 空编码保持为空
func label[T ~string](v T, fn func(T) string) string {
	if v == "" {
		return ""
	}
	return fn(v)
}

func labels[T ~string](vs []T, fn func(T) string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fn(v)
	}
	return out
}

func toBookItem(e *book.CatalogEntry) BookItem {
	item := BookItem{
		ID:               e.ID.String(),
		Title:            e.Title,
		Author:           e.Author,
		Genre:            label(e.Genre, book.Genre.Label),
		Language:         label(e.Language, book.Language.Label),
		OriginalLanguage: label(e.OriginalLanguage, book.Language.Label),
		Price:            e.Price,
		Discount:         e.Discount,
		ActualPrice:      e.ActualPrice,
		Rate:             e.Rate,
		StockQuantity:    e.StockQuantity,
		IsBestseller:     e.IsBestseller,
		IsPublish:        e.IsPublish,
		IsGifted:         e.IsGifted,
		IsAvailable:      e.IsAvailable,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
		Categories:       labels(e.Categories, book.Category.Label),
		TargetAges:       labels(e.TargetAges, book.TargetAge.Label),
		BookType:         labels(e.BookTypes, book.BookType.Label),
		Images:           append([]string{}, e.Images...),
		Reviews:          make([]ReviewItem, len(e.Reviews)),
	}

	if info := e.Info; info != nil {
		item.OriginalTitle = info.OriginalTitle
		item.Series = info.Series
		item.Publisher = info.Publisher
		item.PublicationYear = info.PublicationYear
		item.PageCount = info.PageCount
		item.PaperType = label(info.PaperType, book.PaperType.Label)
		item.Translator = info.Translator
		item.CoverType = label(info.CoverType, book.CoverType.Label)
		item.Weight = info.Weight
		item.Dimensions = info.Dimensions
		item.ISBN = info.ISBN
		item.ArticleNumber = info.ArticleNumber
		item.Description = info.Description
	}

	for i, r := range e.Reviews {
		ri := ReviewItem{
			ID:         r.ID.String(),
			ReviewText: r.Text,
			Rate:       r.Rate,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
			UserName:   r.UserName,
			Avatar:     r.Avatar,
		}
		if r.UserID != nil {
			uid := r.UserID.String()
			ri.UserID = &uid
		}
		item.Reviews[i] = ri
	}
	return item
}
