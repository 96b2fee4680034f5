package relational

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/internal/domain/review"
	"github.com/xiebiao/kidsbook/internal/domain/user"
)

// 测试用sqlite内存库，GORM仍使用MySQL方言生成SQL（反引号、? 占位符sqlite都接受）
// 表结构手写，与 AutoMigrate 生成的列一致
const testSchema = `
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	username      TEXT NOT NULL,
	first_name    TEXT,
	last_name     TEXT,
	phone_number  TEXT,
	role          TEXT NOT NULL DEFAULT 'User',
	login_method  TEXT NOT NULL DEFAULT 'local',
	google_id     TEXT,
	avatar        TEXT,
	password      TEXT,
	refresh_token TEXT,
	is_active     BOOLEAN NOT NULL DEFAULT 1,
	created_at    DATETIME,
	updated_at    DATETIME
);
CREATE UNIQUE INDEX idx_users_email ON users(email);
CREATE UNIQUE INDEX idx_users_phone ON users(phone_number);
CREATE UNIQUE INDEX idx_users_google_id ON users(google_id);
CREATE TABLE books (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	author            TEXT NOT NULL,
	genre             TEXT NOT NULL,
	language          TEXT NOT NULL,
	original_language TEXT,
	price             NUMERIC NOT NULL,
	discount          NUMERIC NOT NULL DEFAULT 0,
	stock_quantity    INTEGER NOT NULL DEFAULT 0,
	is_bestseller     BOOLEAN NOT NULL DEFAULT 0,
	is_publish        BOOLEAN NOT NULL DEFAULT 1,
	is_gifted         BOOLEAN NOT NULL DEFAULT 0,
	is_available      BOOLEAN NOT NULL DEFAULT 1,
	created_at        DATETIME,
	updated_at        DATETIME
);
CREATE TABLE books_info (
	id               TEXT PRIMARY KEY,
	book_id          TEXT NOT NULL UNIQUE,
	original_title   TEXT,
	series           TEXT,
	publisher        TEXT,
	publication_year INTEGER,
	page_count       INTEGER,
	paper_type       TEXT,
	translator       TEXT,
	cover_type       TEXT,
	weight           NUMERIC,
	dimensions       TEXT,
	isbn             TEXT,
	article_number   TEXT,
	description      TEXT
);
CREATE TABLE categories  (id INTEGER PRIMARY KEY AUTOINCREMENT, book_id TEXT NOT NULL, category   TEXT NOT NULL);
CREATE TABLE target_ages (id INTEGER PRIMARY KEY AUTOINCREMENT, book_id TEXT NOT NULL, target_age TEXT NOT NULL);
CREATE TABLE book_types  (id INTEGER PRIMARY KEY AUTOINCREMENT, book_id TEXT NOT NULL, book_type  TEXT NOT NULL);
CREATE TABLE images      (id INTEGER PRIMARY KEY AUTOINCREMENT, book_id TEXT NOT NULL, image_url  TEXT NOT NULL);
CREATE TABLE reviews (
	id          TEXT PRIMARY KEY,
	book_id     TEXT NOT NULL,
	user_id     TEXT,
	review_text TEXT NOT NULL,
	rate        NUMERIC NOT NULL,
	created_at  DATETIME,
	updated_at  DATETIME
);
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_time_format=sqlite")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = sqlDB.Exec(testSchema)
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	return db
}

func newUser(email, phone string) *user.User {
	var p *string
	if phone != "" {
		p = &phone
	}
	return user.NewLocalUser(email, "reader_"+email[:3], "Тарас", "Шевченко", p, "hash")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	alice := newUser("alice@example.com", "+380501112233")
	require.NoError(t, repo.Create(ctx, alice))

	t.Run("按多种条件查找", func(t *testing.T) {
		byID, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.Email, byID.Email)
		assert.Equal(t, user.RoleUser, byID.Role)
		assert.True(t, byID.IsActive)

		byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)

		byPhone, err := repo.FindByPhone(ctx, "+380501112233")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byPhone.ID)

		_, err = repo.FindByGoogleID(ctx, "nobody")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("唯一索引冲突转换为业务错误", func(t *testing.T) {
		err := repo.Create(ctx, newUser("alice@example.com", ""))
		assert.ErrorIs(t, err, user.ErrEmailDuplicate)

		err = repo.Create(ctx, newUser("bob@example.com", "+380501112233"))
		assert.ErrorIs(t, err, user.ErrPhoneDuplicate)

		assert.NoError(t, repo.Create(ctx, newUser("carol@example.com", "")), "手机号为空不冲突")
		assert.NoError(t, repo.Create(ctx, newUser("dave@example.com", "")))
	})

	t.Run("保存与清空刷新令牌", func(t *testing.T) {
		token := "refresh-token"
		require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, &token))
		u, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, u.RefreshToken)
		assert.Equal(t, token, *u.RefreshToken)

		require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, nil))
		u, err = repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, u.RefreshToken)

		assert.ErrorIs(t, repo.SetRefreshToken(ctx, uuid.New(), &token), user.ErrUserNotFound)
	})

	t.Run("绑定Google后更新", func(t *testing.T) {
		u, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		u.LinkGoogle(user.GoogleProfile{Subject: "g-777", Picture: "https://lh3/alice.png"})
		require.NoError(t, repo.Update(ctx, u))

		got, err := repo.FindByGoogleID(ctx, "g-777")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.True(t, got.IsGoogleAccount())
		assert.Equal(t, "https://lh3/alice.png", got.Avatar)
	})
}

func sampleBook() (*book.Book, *book.BookInfo, book.Tags) {
	year, pages := 2020, 96
	b := &book.Book{
		ID:            uuid.New(),
		Title:         "Коза-дереза",
		Author:        "Народна казка",
		Genre:         book.GenreFairyTales,
		Language:      book.LanguageUkrainian,
		Price:         decimal.NewFromInt(180),
		Discount:      decimal.RequireFromString("0.1"),
		StockQuantity: 12,
		IsPublish:     true,
		IsAvailable:   true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	info := &book.BookInfo{
		Publisher:       "Віват",
		PublicationYear: &year,
		PageCount:       &pages,
		CoverType:       book.CoverTypeHard,
		PaperType:       book.PaperTypeCoated,
	}
	tags := book.Tags{
		Categories: []book.Category{book.CategoryChildren},
		TargetAges: []book.TargetAge{book.TargetAge1to3, book.TargetAge3to5},
		BookTypes:  []book.BookType{book.BookTypePaper},
	}
	return b, info, tags
}

func countRows(t *testing.T, db *gorm.DB, table string, bookID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Where("book_id = ?", bookID).Count(&n).Error)
	return n
}

func TestBookRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBookRepository(db)

	b, info, tags := sampleBook()
	require.NoError(t, repo.Create(ctx, b, info, tags))

	t.Run("子表一并写入", func(t *testing.T) {
		assert.EqualValues(t, 1, countRows(t, db, "books_info", b.ID))
		assert.EqualValues(t, 1, countRows(t, db, "categories", b.ID))
		assert.EqualValues(t, 2, countRows(t, db, "target_ages", b.ID))
		assert.EqualValues(t, 1, countRows(t, db, "book_types", b.ID))
		assert.EqualValues(t, 0, countRows(t, db, "images", b.ID))
	})

	t.Run("按ID查找", func(t *testing.T) {
		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Коза-дереза", got.Title)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(180)))
		assert.True(t, got.Discount.Equal(decimal.RequireFromString("0.1")))
		assert.True(t, got.ActualPrice().Equal(decimal.NewFromInt(162)))

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("是否存在", func(t *testing.T) {
		ok, err := repo.Exists(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	repo := NewReviewRepository(db)

	author := newUser("lesya@example.com", "")
	require.NoError(t, users.Create(ctx, author))
	stranger := uuid.New()

	b, info, tags := sampleBook()
	require.NoError(t, books.Create(ctx, b, info, tags))

	older, err := review.NewReview(b.ID, author.ID, "Для найменших", decimal.NewFromInt(4))
	require.NoError(t, err)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))

	newer, err := review.NewReview(b.ID, author.ID, "Перечитуємо щовечора", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, newer))

	t.Run("带作者信息", func(t *testing.T) {
		v, err := repo.FindView(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Тарас Шевченко", v.UserName)
		assert.Contains(t, v.Avatar, "gravatar")
	})

	t.Run("按创建时间倒序", func(t *testing.T) {
		views, err := repo.ListByBook(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, newer.ID, views[0].ID)
		assert.Equal(t, older.ID, views[1].ID)

		mine, err := repo.ListByUser(ctx, author.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("只能操作自己的评论", func(t *testing.T) {
		_, err := repo.FindOwned(ctx, newer.ID, stranger)
		assert.ErrorIs(t, err, review.ErrReviewNotFound)
		assert.ErrorIs(t, repo.DeleteOwned(ctx, newer.ID, stranger), review.ErrReviewNotFound)

		own, err := repo.FindOwned(ctx, newer.ID, author.ID)
		require.NoError(t, err)
		text := "Оновлений відгук"
		require.NoError(t, own.Edit(&text, nil))
		require.NoError(t, repo.Update(ctx, own))

		v, err := repo.FindView(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, text, v.Text)
		assert.True(t, v.Rate.Equal(decimal.NewFromInt(5)))

		require.NoError(t, repo.DeleteOwned(ctx, older.ID, author.ID))
		_, err = repo.FindView(ctx, older.ID)
		assert.ErrorIs(t, err, review.ErrReviewNotFound)
	})
}

func TestTxManager(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tm := NewTxManager(db)
	repo := NewUserRepository(db)

	t.Run("返回错误时回滚", func(t *testing.T) {
		u := newUser("rollback@example.com", "")
		boom := errors.New("boom")
		err := tm.Transaction(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.Create(ctx, u))
			_, err := repo.FindByID(ctx, u.ID)
			require.NoError(t, err, "事务内可见")
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.FindByID(ctx, u.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("成功时提交", func(t *testing.T) {
		u := newUser("commit@example.com", "")
		require.NoError(t, tm.Transaction(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, u)
		}))
		_, err := repo.FindByID(ctx, u.ID)
		assert.NoError(t, err)
	})
}
