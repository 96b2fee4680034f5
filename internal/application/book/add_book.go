package book

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/kidsbook/internal/domain/book"
)

// AddBookUseCase 图书录入用例（管理员）
// 设计说明:
// 1. 价格、折扣、库存的业务规则由领域服务校验
// 2. 标签编码逐个解析，无法识别的编码直接拒绝，避免写入脏数据
type AddBookUseCase struct {
	bookService book.Service
}

// NewAddBookUseCase 创建录入用例
func NewAddBookUseCase(bookService book.Service) *AddBookUseCase {
	return &AddBookUseCase{bookService: bookService}
}

// AddBookRequest 录入请求（编码均为数据库取值）
type AddBookRequest struct {
	Title            string
	Author           string
	Genre            string
	Language         string
	OriginalLanguage string
	Price            decimal.Decimal
	Discount         decimal.Decimal
	StockQuantity    int
	IsBestseller     bool
	IsGifted         bool
	IsAvailable      bool

	Info *AddBookInfo

	Categories []string
	TargetAges []string
	BookTypes  []string
	Images     []string
}

// AddBookInfo 扩展信息
type AddBookInfo struct {
	OriginalTitle   string
	Series          string
	Publisher       string
	PublicationYear *int
	PageCount       *int
	PaperType       string
	Translator      string
	CoverType       string
	Weight          *decimal.Decimal
	Dimensions      string
	ISBN            string
	ArticleNumber   string
	Description     string
}

// AddBookResponse 录入结果
type AddBookResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	ActualPrice decimal.Decimal `json:"actualPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Execute 执行录入
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*AddBookResponse, error) {
	b, info, tags, err := req.toDomain()
	if err != nil {
		return nil, err
	}

	if err := uc.bookService.AddBook(ctx, b, info, tags); err != nil {
		return nil, err
	}

	return &AddBookResponse{
		ID:          b.ID.String(),
		Title:       b.Title,
		Author:      b.Author,
		Price:       b.Price,
		Discount:    b.Discount,
		ActualPrice: b.ActualPrice(),
		CreatedAt:   b.CreatedAt,
	}, nil
}

func (req AddBookRequest) toDomain() (*book.Book, *book.BookInfo, book.Tags, error) {
	var tags book.Tags

	genre, err := parseOptional(req.Genre, book.ParseGenre, "genre")
	if err != nil {
		return nil, nil, tags, err
	}
	lang, err := parseOptional(req.Language, book.ParseLanguage, "language")
	if err != nil {
		return nil, nil, tags, err
	}
	origLang, err := parseOptional(req.OriginalLanguage, book.ParseLanguage, "originalLanguage")
	if err != nil {
		return nil, nil, tags, err
	}

	if tags.Categories, err = parseAll(req.Categories, book.ParseCategory, "categories"); err != nil {
		return nil, nil, tags, err
	}
	if tags.TargetAges, err = parseAll(req.TargetAges, book.ParseTargetAge, "targetAges"); err != nil {
		return nil, nil, tags, err
	}
	if tags.BookTypes, err = parseAll(req.BookTypes, book.ParseBookType, "bookType"); err != nil {
		return nil, nil, tags, err
	}
	tags.Images = req.Images

	now := time.Now().UTC()
	b := &book.Book{
		ID:               uuid.New(),
		Title:            req.Title,
		Author:           req.Author,
		Genre:            genre,
		Language:         lang,
		OriginalLanguage: origLang,
		Price:            req.Price,
		Discount:         req.Discount,
		StockQuantity:    req.StockQuantity,
		IsBestseller:     req.IsBestseller,
		IsPublish:        true,
		IsGifted:         req.IsGifted,
		IsAvailable:      req.IsAvailable,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.Info == nil {
		return b, nil, tags, nil
	}
	paper, err := parseOptional(req.Info.PaperType, book.ParsePaperType, "paperType")
	if err != nil {
		return nil, nil, tags, err
	}
	cover, err := parseOptional(req.Info.CoverType, book.ParseCoverType, "coverType")
	if err != nil {
		return nil, nil, tags, err
	}
	info := &book.BookInfo{
		OriginalTitle:   req.Info.OriginalTitle,
		Series:          req.Info.Series,
		Publisher:       req.Info.Publisher,
		PublicationYear: req.Info.PublicationYear,
		PageCount:       req.Info.PageCount,
		PaperType:       paper,
		Translator:      req.Info.Translator,
		CoverType:       cover,
		Weight:          req.Info.Weight,
		Dimensions:      req.Info.Dimensions,
		ISBN:            req.Info.ISBN,
		ArticleNumber:   req.Info.ArticleNumber,
		Description:     req.Info.Description,
	}
	return b, info, tags, nil
}

func parseOptional[T ~string](s string, parse func(string) (T, bool), field string) (T, error) {
	if s == "" {
		return "", nil
	}
	v, ok := parse(s)
	if !ok {
		return "", book.UnknownCode(field, s)
	}
	return v, nil
}

func parseAll[T ~string](codes []string, parse func(string) (T, bool), field string) ([]T, error) {
	out := make([]T, 0, len(codes))
	for _, s := range codes {
		v, err := parseOptional(s, parse, field)
		if err != nil {
			return nil, err
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
