package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// bookRepository 图书仓储实现
// 列表查询不走这里，见 catalog 包
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 图书、扩展信息、标签在同一事务内写入
// 关联表逐个显式插入，不依赖GORM的关联upsert
func (r *bookRepository) Create(ctx context.Context, b *book.Book, info *book.BookInfo, tags book.Tags) error {
	model := toBookModel(b, info, tags)
	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if model.Info != nil {
			if err := tx.Create(model.Info).Error; err != nil {
				return err
			}
		}
		if err := createAll(tx, model.Categories); err != nil {
			return err
		}
		if err := createAll(tx, model.TargetAges); err != nil {
			return err
		}
		if err := createAll(tx, model.BookTypes); err != nil {
			return err
		}
		return createAll(tx, model.Images)
	})
	if err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return n > 0, nil
}

func toBookModel(b *book.Book, info *book.BookInfo, tags book.Tags) *BookModel {
	m := &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         string(b.Genre),
		Language:      string(b.Language),
		Price:         b.Price,
		Discount:      b.Discount,
		StockQuantity: b.StockQuantity,
		IsBestseller:  b.IsBestseller,
		IsPublish:     b.IsPublish,
		IsGifted:      b.IsGifted,
		IsAvailable:   b.IsAvailable,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.OriginalLanguage != "" {
		lang := string(b.OriginalLanguage)
		m.OriginalLanguage = &lang
	}

	if info != nil {
		m.Info = &BookInfoModel{
			BookID:          b.ID,
			OriginalTitle:   info.OriginalTitle,
			Series:          info.Series,
			Publisher:       info.Publisher,
			PublicationYear: info.PublicationYear,
			PageCount:       info.PageCount,
			PaperType:       string(info.PaperType),
			Translator:      info.Translator,
			CoverType:       string(info.CoverType),
			Weight:          info.Weight,
			Dimensions:      info.Dimensions,
			ISBN:            info.ISBN,
			ArticleNumber:   info.ArticleNumber,
			Description:     info.Description,
		}
	}

	for _, c := range tags.Categories {
		m.Categories = append(m.Categories, CategoryModel{BookID: b.ID, Category: string(c)})
	}
	for _, a := range tags.TargetAges {
		m.TargetAges = append(m.TargetAges, TargetAgeModel{BookID: b.ID, TargetAge: string(a)})
	}
	for _, t := range tags.BookTypes {
		m.BookTypes = append(m.BookTypes, BookTypeModel{BookID: b.ID, BookType: string(t)})
	}
	for _, url := range tags.Images {
		m.Images = append(m.Images, ImageModel{BookID: b.ID, ImageURL: url})
	}
	return m
}

func toBookEntity(m *BookModel) *book.Book {
	b := &book.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		Genre:         book.Genre(m.Genre),
		Language:      book.Language(m.Language),
		Price:         m.Price,
		Discount:      m.Discount,
		StockQuantity: m.StockQuantity,
		IsBestseller:  m.IsBestseller,
		IsPublish:     m.IsPublish,
		IsGifted:      m.IsGifted,
		IsAvailable:   m.IsAvailable,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.OriginalLanguage != nil {
		b.OriginalLanguage = book.Language(*m.OriginalLanguage)
	}
	return b
}
