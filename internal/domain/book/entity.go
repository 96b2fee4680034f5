package book

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book 图书实体(聚合根)
// 分类、适读年龄、载体类型、图片、评论、扩展信息都随图书级联删除
type Book struct {
	ID               uuid.UUID
	Title            string
	Author           string
	Genre            Genre
	Language         Language
	OriginalLanguage Language
	Price            decimal.Decimal // >= 0
	Discount         decimal.Decimal // [0, 1]
	StockQuantity    int
	IsBestseller     bool
	IsPublish        bool
	IsGifted         bool
	IsAvailable      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActualPrice 折后价
func (b *Book) ActualPrice() decimal.Decimal {
	return ActualPrice(b.Price, b.Discount)
}

// Validate 校验价格、折扣、库存
func (b *Book) Validate() error {
	if b.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if b.Discount.IsNegative() || b.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidDiscount
	}
	if b.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// ActualPrice round(price * (1 - discount))，四舍五入到整数
// 与SQL侧 ROUND(price * (1 - discount)) 口径一致
func ActualPrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(discount)).Round(0)
}

// BookInfo 图书扩展信息（0..1）
type BookInfo struct {
	OriginalTitle   string
	Series          string
	Publisher       string
	PublicationYear *int
	PageCount       *int
	PaperType       PaperType
	Translator      string
	CoverType       CoverType
	Weight          *decimal.Decimal
	Dimensions      string
	ISBN            string
	ArticleNumber   string
	Description     string
}

// ReviewSummary 列表中内嵌的评论
type ReviewSummary struct {
	ID        uuid.UUID
	Text      string
	Rate      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    *uuid.UUID
	UserName  string
	Avatar    string
}

// CatalogEntry 目录列表中的一本书：图书本身 + 聚合出的派生数据
type CatalogEntry struct {
	Book
	Info        *BookInfo
	ActualPrice decimal.Decimal
	Rate        decimal.Decimal // 无评论时为0
	Categories  []Category
	TargetAges  []TargetAge
	BookTypes   []BookType
	Images      []string
	Reviews     []ReviewSummary
}
