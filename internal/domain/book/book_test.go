package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

func TestActualPrice(t *testing.T) {
	cases := []struct {
		price, discount, want string
	}{
		{"100", "0.2", "80"},
		{"50", "0", "50"},
		{"99.99", "0.15", "85"}, // 84.9915
		{"10", "0.25", "8"},     // 7.5 四舍五入
		{"0", "0.5", "0"},
		{"120", "1", "0"},
	}
	for _, tc := range cases {
		got := ActualPrice(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.discount))
		assert.Truef(t, got.Equal(decimal.RequireFromString(tc.want)),
			"price=%s discount=%s got=%s", tc.price, tc.discount, got)
	}
}

func TestBook_Validate(t *testing.T) {
	valid := Book{Price: decimal.NewFromInt(10), Discount: decimal.RequireFromString("0.1")}
	assert.NoError(t, valid.Validate())

	neg := valid
	neg.Price = decimal.NewFromInt(-1)
	assert.ErrorIs(t, neg.Validate(), ErrInvalidPrice)

	over := valid
	over.Discount = decimal.RequireFromString("1.01")
	assert.ErrorIs(t, over.Validate(), ErrInvalidDiscount)

	stock := valid
	stock.StockQuantity = -3
	assert.ErrorIs(t, stock.Validate(), ErrInvalidStock)
}

func TestEnums(t *testing.T) {
	t.Run("解析与展示名称", func(t *testing.T) {
		g, ok := ParseGenre("fairyTales")
		require.True(t, ok)
		assert.Equal(t, "Казки", g.Label())

		_, ok = ParseGenre("fairytales")
		assert.False(t, ok, "编码区分大小写")
	})

	t.Run("未登记编码回退到Інше", func(t *testing.T) {
		assert.Equal(t, OtherLabel, Genre("Horror").Label())
		assert.Equal(t, OtherLabel, CoverType("").Label())
	})

	t.Run("逗号列表丢弃非法项并去重", func(t *testing.T) {
		got := ParseCategories("Fantasy, Mystery,bogus,,Fantasy")
		assert.Equal(t, []Category{CategoryFantasy, CategoryMystery}, got)

		assert.Empty(t, ParseTargetAges("nope,also-nope"))
		assert.Equal(t, []BookType{BookTypeEbook}, ParseBookTypes("Ebook"))
	})
}

func TestParseDateBound(t *testing.T) {
	d, err := ParseDateBound("2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDateBound("2021")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"20-03-2024", "21", "2024/03/20", "yesterday"} {
		_, err := ParseDateBound(bad)
		assert.ErrorIsf(t, err, ErrInvalidDate, "input %q", bad)
	}
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 1, TotalPages(1, 100))
	assert.Equal(t, 0, TotalPages(0, 10))

	assert.Equal(t, 1, CurrentPage(0, 10))
	assert.Equal(t, 1, CurrentPage(9, 10))
	assert.Equal(t, 2, CurrentPage(10, 10))
	assert.Equal(t, 4, CurrentPage(35, 10))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "actual_price", ToSnakeCase("actualPrice"))
	assert.Equal(t, "publication_year", ToSnakeCase("publicationYear"))
	assert.Equal(t, "created_at", ToSnakeCase("created_at"))
	assert.Equal(t, "rate", ToSnakeCase("Rate"))
}

// fakeCatalog 记录收到的查询
type fakeCatalog struct {
	got  ListQuery
	page *Page
	err  error
}

func (f *fakeCatalog) List(_ context.Context, q ListQuery) (*Page, error) {
	f.got = q
	return f.page, f.err
}

func TestService_ListBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("默认值与规范化", func(t *testing.T) {
		cat := &fakeCatalog{page: &Page{Total: 1, Entries: []*CatalogEntry{{}}}}
		svc := NewService(nil, cat)

		_, err := svc.ListBooks(ctx, ListQuery{Filters: FilterParams{
			ParamCreatedAtAfter: "2020",
			ParamAuthor:         "  ",
			ParamTitle:          " Мавка ",
		}})
		require.NoError(t, err)

		assert.Equal(t, DefaultLimit, cat.got.Limit)
		assert.Equal(t, SortCreatedAt, cat.got.SortBy)
		assert.Equal(t, OrderDesc, cat.got.SortOrder)
		assert.Equal(t, "2020-01-01", cat.got.Filters[ParamCreatedAtAfter])
		assert.Equal(t, "Мавка", cat.got.Filters[ParamTitle])
		_, hasAuthor := cat.got.Filters[ParamAuthor]
		assert.False(t, hasAuthor, "空白值视为未提供")
	})

	t.Run("驼峰排序字段", func(t *testing.T) {
		cat := &fakeCatalog{page: &Page{Total: 1}}
		svc := NewService(nil, cat)

		_, err := svc.ListBooks(ctx, ListQuery{SortBy: "actualPrice", SortOrder: "DESC", Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, SortActualPrice, cat.got.SortBy)
		assert.Equal(t, OrderDesc, cat.got.SortOrder)
	})

	t.Run("校验失败不触达数据库", func(t *testing.T) {
		cases := []struct {
			name string
			q    ListQuery
			want error
		}{
			{"非法日期", ListQuery{Filters: FilterParams{ParamCreatedAtBefore: "03/20/2024"}}, ErrInvalidDate},
			{"limit过大", ListQuery{Limit: 101}, ErrInvalidLimit},
			{"offset为负", ListQuery{Offset: -1}, ErrInvalidOffset},
			{"折扣越界", ListQuery{Filters: FilterParams{ParamDiscountMax: "1.5"}}, ErrInvalidDiscountParam},
			{"价格非数字", ListQuery{Filters: FilterParams{ParamPriceMin: "cheap"}}, ErrInvalidPriceParam},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cat := &fakeCatalog{}
				svc := NewService(nil, cat)
				_, err := svc.ListBooks(ctx, tc.q)
				assert.ErrorIs(t, err, tc.want)
				assert.Nil(t, cat.got.Filters, "catalog不应被调用")
			})
		}
	})

	t.Run("非有限数值视为参数错误", func(t *testing.T) {
		cases := []struct {
			name  string
			param string
			value string
			msg   string
		}{
			{"最低价NaN", ParamPriceMin, "NaN", ErrInvalidPriceParam.Message},
			{"最高价+Inf", ParamPriceMax, "+Inf", ErrInvalidPriceParam.Message},
			{"最高价Inf", ParamPriceMax, "Inf", ErrInvalidPriceParam.Message},
			{"最低价-Inf", ParamPriceMin, "-Inf", ErrInvalidPriceParam.Message},
			{"折扣上限NaN", ParamDiscountMax, "NaN", ErrInvalidDiscountParam.Message},
			{"折扣下限Inf", ParamDiscountMin, "Inf", ErrInvalidDiscountParam.Message},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cat := &fakeCatalog{page: &Page{Total: 1}}
				svc := NewService(nil, cat)
				_, err := svc.ListBooks(ctx, ListQuery{Filters: FilterParams{tc.param: tc.value}})

				appErr := apperrors.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
				assert.Equal(t, tc.msg+": "+tc.param, appErr.Message)
				assert.Nil(t, cat.got.Filters, "catalog不应被调用")
			})
		}
	})

	t.Run("格式错误的提示不误报为负数", func(t *testing.T) {
		svc := NewService(nil, &fakeCatalog{})
		_, err := svc.ListBooks(ctx, ListQuery{Filters: FilterParams{ParamPriceMin: "abc"}})
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "价格参数必须是不小于0的数字: price_min", appErr.Message)
	})

	t.Run("无匹配返回ErrNoBooksFound", func(t *testing.T) {
		svc := NewService(nil, &fakeCatalog{page: &Page{}})
		_, err := svc.ListBooks(ctx, ListQuery{})
		assert.ErrorIs(t, err, ErrNoBooksFound)

		appErr := apperrors.GetAppError(err)
		assert.Equal(t, 404, appErr.HTTPStatus())
	})

	t.Run("存储错误原样返回", func(t *testing.T) {
		boom := errors.New("connection reset")
		svc := NewService(nil, &fakeCatalog{err: boom})
		_, err := svc.ListBooks(ctx, ListQuery{})
		assert.ErrorIs(t, err, boom)
	})
}

type fakeRepo struct {
	created *Book
}

func (f *fakeRepo) Create(_ context.Context, b *Book, _ *BookInfo, _ Tags) error {
	f.created = b
	return nil
}
func (f *fakeRepo) FindByID(context.Context, uuid.UUID) (*Book, error) { return nil, ErrBookNotFound }
func (f *fakeRepo) Exists(context.Context, uuid.UUID) (bool, error)    { return false, nil }

func TestService_AddBook(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	err := svc.AddBook(context.Background(), &Book{Price: decimal.NewFromInt(-5)}, nil, Tags{})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Nil(t, repo.created)

	b := &Book{Title: "Кайдашева сім'я", Price: decimal.NewFromInt(250)}
	require.NoError(t, svc.AddBook(context.Background(), b, nil, Tags{}))
	assert.Same(t, b, repo.created)
}
