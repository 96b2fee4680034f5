package catalog

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/internal/domain/user"
)

// bookRow 列表页一行：books LEFT JOIN books_info LEFT JOIN review_stats
type bookRow struct {
	ID               uuid.UUID       `db:"id"`
	Title            string          `db:"title"`
	Author           string          `db:"author"`
	Genre            string          `db:"genre"`
	Language         string          `db:"language"`
	OriginalLanguage sql.NullString  `db:"original_language"`
	Price            decimal.Decimal `db:"price"`
	Discount         decimal.Decimal `db:"discount"`
	StockQuantity    int             `db:"stock_quantity"`
	IsBestseller     bool            `db:"is_bestseller"`
	IsPublish        bool            `db:"is_publish"`
	IsGifted         bool            `db:"is_gifted"`
	IsAvailable      bool            `db:"is_available"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`

	InfoID          sql.NullString      `db:"info_id"`
	OriginalTitle   sql.NullString      `db:"original_title"`
	Series          sql.NullString      `db:"series"`
	Publisher       sql.NullString      `db:"publisher"`
	PublicationYear sql.NullInt64       `db:"publication_year"`
	PageCount       sql.NullInt64       `db:"page_count"`
	PaperType       sql.NullString      `db:"paper_type"`
	Translator      sql.NullString      `db:"translator"`
	CoverType       sql.NullString      `db:"cover_type"`
	Weight          decimal.NullDecimal `db:"weight"`
	Dimensions      sql.NullString      `db:"dimensions"`
	ISBN            sql.NullString      `db:"isbn"`
	ArticleNumber   sql.NullString      `db:"article_number"`
	Description     sql.NullString      `db:"description"`

	ActualPrice decimal.Decimal `db:"actual_price"`
	Rate        decimal.Decimal `db:"rate"`
}

func (r *bookRow) toEntry() *book.CatalogEntry {
	entry := &book.CatalogEntry{
		Book: book.Book{
			ID:               r.ID,
			Title:            r.Title,
			Author:           r.Author,
			Genre:            book.Genre(r.Genre),
			Language:         book.Language(r.Language),
			OriginalLanguage: book.Language(r.OriginalLanguage.String),
			Price:            r.Price,
			Discount:         r.Discount,
			StockQuantity:    r.StockQuantity,
			IsBestseller:     r.IsBestseller,
			IsPublish:        r.IsPublish,
			IsGifted:         r.IsGifted,
			IsAvailable:      r.IsAvailable,
			CreatedAt:        r.CreatedAt,
			UpdatedAt:        r.UpdatedAt,
		},
		ActualPrice: r.ActualPrice,
		Rate:        r.Rate,
		Categories:  []book.Category{},
		TargetAges:  []book.TargetAge{},
		BookTypes:   []book.BookType{},
		Images:      []string{},
		Reviews:     []book.ReviewSummary{},
	}

	if r.InfoID.Valid {
		info := &book.BookInfo{
			OriginalTitle: r.OriginalTitle.String,
			Series:        r.Series.String,
			Publisher:     r.Publisher.String,
			PaperType:     book.PaperType(r.PaperType.String),
			Translator:    r.Translator.String,
			CoverType:     book.CoverType(r.CoverType.String),
			Dimensions:    r.Dimensions.String,
			ISBN:          r.ISBN.String,
			ArticleNumber: r.ArticleNumber.String,
			Description:   r.Description.String,
		}
		if r.PublicationYear.Valid {
			y := int(r.PublicationYear.Int64)
			info.PublicationYear = &y
		}
		if r.PageCount.Valid {
			n := int(r.PageCount.Int64)
			info.PageCount = &n
		}
		if r.Weight.Valid {
			w := r.Weight.Decimal
			info.Weight = &w
		}
		entry.Info = info
	}

	return entry
}

// tagRow 标签表的一行（去重后）
type tagRow struct {
	BookID string         `db:"book_id"`
	Value  sql.NullString `db:"value"`
}

// reviewRow reviews LEFT JOIN users
type reviewRow struct {
	ID        uuid.UUID           `db:"id"`
	BookID    string              `db:"book_id"`
	Text      string              `db:"review_text"`
	Rate      decimal.NullDecimal `db:"rate"`
	CreatedAt time.Time           `db:"created_at"`
	UpdatedAt time.Time           `db:"updated_at"`
	UserID    uuid.NullUUID       `db:"user_id"`
	FirstName sql.NullString      `db:"first_name"`
	LastName  sql.NullString      `db:"last_name"`
	Username  sql.NullString      `db:"username"`
	Avatar    sql.NullString      `db:"avatar"`
}

func (r *reviewRow) toSummary() book.ReviewSummary {
	s := book.ReviewSummary{
		ID:        r.ID,
		Text:      r.Text,
		Rate:      r.Rate.Decimal,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Avatar:    r.Avatar.String,
	}
	if r.UserID.Valid {
		id := r.UserID.UUID
		s.UserID = &id
		s.UserName = user.DisplayName(r.FirstName.String, r.LastName.String, r.Username.String)
	}
	return s
}

// normalizeID 统一id的字符串形式，避免大小写差异导致分组失败
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
