package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/kidsbook/internal/application/book"
	appreview "github.com/xiebiao/kidsbook/internal/application/review"
	appuser "github.com/xiebiao/kidsbook/internal/application/user"
	"github.com/xiebiao/kidsbook/internal/domain/book"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/jwt"
	"github.com/xiebiao/kidsbook/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var currentUser = uuid.MustParse("7f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f")

// loggedIn 代替认证中间件注入当前用户
func loggedIn(c *gin.Context) {
	claims := &jwt.Claims{UserID: currentUser.String(), Email: "olena@example.com", Scope: jwt.ScopeAccess}
	claims.ID = "jti-1"
	c.Set(middleware.ContextUserID, currentUser)
	c.Set(middleware.ContextClaims, claims)
	c.Next()
}

func send(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ========== 图书 ==========

type fakeLister struct {
	got  appbook.ListBooksRequest
	page *appbook.ListBooksResponse
	err  error
}

func (f *fakeLister) Execute(_ context.Context, req appbook.ListBooksRequest) (*appbook.ListBooksResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &appbook.ListBooksResponse{TotalBooks: 1, TotalPages: 1, CurrentPage: 1, Limit: req.Limit, Books: []appbook.BookItem{}}, nil
}

type fakeAdder struct {
	got appbook.AddBookRequest
}

func (f *fakeAdder) Execute(_ context.Context, req appbook.AddBookRequest) (*appbook.AddBookResponse, error) {
	f.got = req
	return &appbook.AddBookResponse{ID: uuid.NewString(), Title: req.Title, Price: req.Price}, nil
}

func TestBookHandler(t *testing.T) {
	lister := &fakeLister{}
	adder := &fakeAdder{}
	h := NewBookHandler(lister, adder)

	r := gin.New()
	r.GET("/books", h.ListBooks)
	r.POST("/books", h.AddBook)

	t.Run("默认分页与排序", func(t *testing.T) {
		w := send(r, http.MethodGet, "/books", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, lister.got.Limit)
		assert.Equal(t, 0, lister.got.Offset)
		assert.Equal(t, "actualPrice", lister.got.SortBy)
		assert.Equal(t, "asc", lister.got.SortOrder)
		assert.Empty(t, lister.got.Filters)
	})

	t.Run("camelCase参数转换为筛选参数集", func(t *testing.T) {
		w := send(r, http.MethodGet, "/books?author=Leslie&targetAges=5-8,8-12&priceMin=100&createdAtAfter=2024&sortBy=title&sortOrder=desc&limit=5&offset=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{
			book.ParamAuthor:         "Leslie",
			book.ParamTargetAges:     "5-8,8-12",
			book.ParamPriceMin:       "100",
			book.ParamCreatedAtAfter: "2024",
		}, lister.got.Filters)
		assert.Equal(t, "title", lister.got.SortBy)
		assert.Equal(t, "desc", lister.got.SortOrder)
		assert.Equal(t, 5, lister.got.Limit)
		assert.Equal(t, 10, lister.got.Offset)
	})

	t.Run("分页参数越界", func(t *testing.T) {
		for _, q := range []string{"limit=0", "limit=101", "offset=-1", "limit=abc"} {
			w := send(r, http.MethodGet, "/books?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
			assert.Equal(t, apperrors.ErrCodeBindError, decode(t, w).Code, q)
		}
	})

	t.Run("没有符合条件的图书", func(t *testing.T) {
		lister.err = apperrors.ErrNoBooksFound
		defer func() { lister.err = nil }()

		w := send(r, http.MethodGet, "/books?title=nothing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperrors.ErrCodeNoBooksFound, decode(t, w).Code)
	})

	t.Run("金额字段输出为JSON数字", func(t *testing.T) {
		lister.page = &appbook.ListBooksResponse{TotalBooks: 1, TotalPages: 1, CurrentPage: 1, Limit: 10, Books: []appbook.BookItem{{
			Price:       decimal.NewFromInt(100),
			Discount:    decimal.RequireFromString("0.2"),
			ActualPrice: decimal.NewFromInt(80),
			Rate:        decimal.RequireFromString("4.5"),
			Reviews:     []appbook.ReviewItem{{Rate: decimal.NewFromInt(5)}},
		}}}
		defer func() { lister.page = nil }()

		w := send(r, http.MethodGet, "/books", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Books []map[string]interface{} `json:"books"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data.Books, 1)
		got := body.Data.Books[0]
		assert.Equal(t, float64(80), got["actualPrice"])
		assert.Equal(t, float64(100), got["price"])
		assert.Equal(t, 0.2, got["discount"])
		assert.Equal(t, 4.5, got["rate"])

		reviews, ok := got["reviews"].([]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(5), reviews[0].(map[string]interface{})["rate"])
	})

	t.Run("录入图书", func(t *testing.T) {
		w := send(r, http.MethodPost, "/books", map[string]interface{}{
			"title":      "Маленький принц",
			"author":     "Антуан де Сент-Екзюпері",
			"price":      250,
			"discount":   0.1,
			"categories": []string{"ChildrenLiterature"},
			"bookType":   []string{"Paper"},
			"info":       map[string]interface{}{"coverType": "Hardcover", "pageCount": 96},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decimal.NewFromInt(250).Equal(adder.got.Price))
		assert.Equal(t, []string{"Paper"}, adder.got.BookTypes)
		require.NotNil(t, adder.got.Info)
		assert.Equal(t, "Hardcover", adder.got.Info.CoverType)
		assert.Equal(t, 96, *adder.got.Info.PageCount)
	})

	t.Run("录入缺少必填字段", func(t *testing.T) {
		w := send(r, http.MethodPost, "/books", map[string]interface{}{"author": "x", "price": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// ========== 评论 ==========

type fakeReviews struct {
	posted  appreview.PostReviewRequest
	updated appreview.UpdateReviewRequest
	deleted uuid.UUID
	err     error
}

func (f *fakeReviews) view(id, bookID uuid.UUID) *appreview.ReviewResponse {
	uid := currentUser.String()
	return &appreview.ReviewResponse{ID: id.String(), BookID: bookID.String(), UserID: &uid}
}

type poster struct{ *fakeReviews }

func (p poster) Execute(_ context.Context, req appreview.PostReviewRequest) (*appreview.ReviewResponse, error) {
	p.posted = req
	if p.err != nil {
		return nil, p.err
	}
	return p.view(uuid.New(), req.BookID), nil
}

type updater struct{ *fakeReviews }

func (u updater) Execute(_ context.Context, req appreview.UpdateReviewRequest) (*appreview.ReviewResponse, error) {
	u.updated = req
	if u.err != nil {
		return nil, u.err
	}
	return u.view(req.ReviewID, uuid.New()), nil
}

type deleter struct{ *fakeReviews }

func (d deleter) Execute(_ context.Context, userID, reviewID uuid.UUID) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = reviewID
	return nil
}

type lister struct{ *fakeReviews }

func (l lister) ByBook(_ context.Context, bookID uuid.UUID) ([]*appreview.ReviewResponse, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []*appreview.ReviewResponse{l.view(uuid.New(), bookID)}, nil
}

func (l lister) Mine(_ context.Context, userID uuid.UUID) ([]*appreview.ReviewResponse, error) {
	return []*appreview.ReviewResponse{}, nil
}

func TestReviewHandler(t *testing.T) {
	f := &fakeReviews{}
	h := NewReviewHandler(poster{f}, updater{f}, deleter{f}, lister{f})

	r := gin.New()
	r.GET("/books/:id/reviews", h.ListBookReviews)
	authed := r.Group("/reviews", loggedIn)
	authed.POST("", h.PostReview)
	authed.GET("/me", h.ListMyReviews)
	authed.PUT("/:id", h.UpdateReview)
	authed.DELETE("/:id", h.DeleteReview)

	bookID := uuid.New()

	t.Run("发表评论带上当前用户", func(t *testing.T) {
		w := send(r, http.MethodPost, "/reviews", map[string]interface{}{
			"bookId": bookID.String(), "reviewText": "Чудова книга", "rate": 4.5,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, currentUser, f.posted.UserID)
		assert.Equal(t, bookID, f.posted.BookID)
		assert.Equal(t, "4.5", f.posted.Rate.String())
	})

	t.Run("发表评论参数错误", func(t *testing.T) {
		cases := []map[string]interface{}{
			{"bookId": "not-a-uuid", "reviewText": "x", "rate": 3},
			{"bookId": bookID.String(), "reviewText": "", "rate": 3},
			{"bookId": bookID.String(), "reviewText": "x"},
		}
		for _, body := range cases {
			w := send(r, http.MethodPost, "/reviews", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("图书不存在", func(t *testing.T) {
		f.err = apperrors.ErrBookNotFound
		defer func() { f.err = nil }()

		w := send(r, http.MethodPost, "/reviews", map[string]interface{}{
			"bookId": bookID.String(), "reviewText": "x", "rate": 3,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, decode(t, w).Code)
	})

	t.Run("修改评论只传部分字段", func(t *testing.T) {
		reviewID := uuid.New()
		w := send(r, http.MethodPut, "/reviews/"+reviewID.String(), map[string]interface{}{"reviewText": "Оновлено"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, reviewID, f.updated.ReviewID)
		assert.Equal(t, currentUser, f.updated.UserID)
		require.NotNil(t, f.updated.ReviewText)
		assert.Equal(t, "Оновлено", *f.updated.ReviewText)
		assert.Nil(t, f.updated.Rate)
	})

	t.Run("无效的评论ID", func(t *testing.T) {
		w := send(r, http.MethodDelete, "/reviews/123", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, decode(t, w).Code)
	})

	t.Run("删除别人的评论表现为不存在", func(t *testing.T) {
		f.err = apperrors.ErrReviewNotFound
		defer func() { f.err = nil }()

		w := send(r, http.MethodDelete, "/reviews/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperrors.ErrCodeReviewNotFound, decode(t, w).Code)
	})

	t.Run("图书评论列表", func(t *testing.T) {
		w := send(r, http.MethodGet, "/books/"+bookID.String()+"/reviews", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.([]interface{})
		require.Len(t, data, 1)
		assert.Equal(t, bookID.String(), data[0].(map[string]interface{})["bookId"])
	})

	t.Run("我的评论为空时返回空数组", func(t *testing.T) {
		w := send(r, http.MethodGet, "/reviews/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"code":0,"message":"success","data":[]}`, w.Body.String())
	})
}

// ========== 认证 ==========

type fakeAuth struct {
	login   appuser.LoginRequest
	logout  appuser.LogoutRequest
	refresh appuser.RefreshRequest
	google  appuser.GoogleCallbackRequest
	err     error
}

func (f *fakeAuth) tokens() *appuser.TokenResponse {
	return &appuser.TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: appuser.TokenType, ExpiresIn: 1800}
}

type registerFn func(appuser.RegisterRequest) (*appuser.UserResponse, error)

func (fn registerFn) Execute(_ context.Context, req appuser.RegisterRequest) (*appuser.UserResponse, error) {
	return fn(req)
}

type loginFake struct{ *fakeAuth }

func (l loginFake) Execute(_ context.Context, req appuser.LoginRequest) (*appuser.TokenResponse, error) {
	l.login = req
	if l.err != nil {
		return nil, l.err
	}
	return l.tokens(), nil
}

type refreshFake struct{ *fakeAuth }

func (r refreshFake) Execute(_ context.Context, req appuser.RefreshRequest) (*appuser.TokenResponse, error) {
	r.refresh = req
	return r.tokens(), nil
}

type logoutFake struct{ *fakeAuth }

func (l logoutFake) Execute(_ context.Context, req appuser.LogoutRequest) error {
	l.logout = req
	return nil
}

type profileFn func(uuid.UUID) (*appuser.UserResponse, error)

func (fn profileFn) Execute(_ context.Context, id uuid.UUID) (*appuser.UserResponse, error) {
	return fn(id)
}

type googleFake struct{ *fakeAuth }

func (g googleFake) AuthURL(context.Context) (*appuser.GoogleURLResponse, error) {
	return &appuser.GoogleURLResponse{URL: "https://accounts.google.com/o/oauth2/auth?state=s"}, nil
}

func (g googleFake) Callback(_ context.Context, req appuser.GoogleCallbackRequest) (*appuser.TokenResponse, error) {
	g.google = req
	return g.tokens(), nil
}

func TestAuthHandler(t *testing.T) {
	f := &fakeAuth{}
	var registered appuser.RegisterRequest
	h := NewAuthHandler(
		registerFn(func(req appuser.RegisterRequest) (*appuser.UserResponse, error) {
			if req.Email == "taken@example.com" {
				return nil, apperrors.ErrEmailDuplicate
			}
			registered = req
			return &appuser.UserResponse{ID: uuid.NewString(), Email: req.Email}, nil
		}),
		loginFake{f},
		refreshFake{f},
		logoutFake{f},
		profileFn(func(id uuid.UUID) (*appuser.UserResponse, error) {
			return &appuser.UserResponse{ID: id.String()}, nil
		}),
		googleFake{f},
	)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", loggedIn, h.Logout)
	r.GET("/auth/google/login", h.GoogleLogin)
	r.GET("/auth/google/callback", h.GoogleCallback)
	r.GET("/users/me", loggedIn, h.Me)

	t.Run("注册", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/signup", map[string]string{
			"email": "olena@example.com", "username": "olena_k", "password": "Secret123", "phoneNumber": "+380501234567",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "+380501234567", registered.PhoneNumber)
	})

	t.Run("注册参数校验", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/signup", map[string]string{
			"email": "not-an-email", "username": "olena_k", "password": "Secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.ErrCodeBindError, decode(t, w).Code)
	})

	t.Run("邮箱已注册", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/signup", map[string]string{
			"email": "taken@example.com", "username": "olena_k", "password": "Secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apperrors.ErrCodeEmailDuplicate, decode(t, w).Code)
	})

	t.Run("登录返回Token对", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/login", map[string]string{"login": "olena@example.com", "password": "Secret123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "olena@example.com", f.login.Login)
		assert.NotEmpty(t, f.login.ClientIP)

		data := decode(t, w).Data.(map[string]interface{})
		assert.Equal(t, "bearer", data["tokenType"])
		assert.EqualValues(t, 1800, data["expiresIn"])
	})

	t.Run("账号或密码错误", func(t *testing.T) {
		f.err = apperrors.ErrInvalidCredentials
		defer func() { f.err = nil }()

		w := send(r, http.MethodPost, "/auth/login", map[string]string{"login": "olena@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, decode(t, w).Code)
	})

	t.Run("刷新", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": "r-1"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "r-1", f.refresh.RefreshToken)
	})

	t.Run("登出传递jti", func(t *testing.T) {
		w := send(r, http.MethodPost, "/auth/logout", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, currentUser, f.logout.UserID)
		assert.Equal(t, "jti-1", f.logout.TokenID)
		assert.Equal(t, time.Duration(0), f.logout.TokenTTL, "无过期时间的Claims剩余时间为0")
	})

	t.Run("Google登录地址", func(t *testing.T) {
		w := send(r, http.MethodGet, "/auth/google/login", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, decode(t, w).Data.(map[string]interface{})["url"], "state=")
	})

	t.Run("Google回调缺少state", func(t *testing.T) {
		w := send(r, http.MethodGet, "/auth/google/callback?code=abc", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidOAuthState, decode(t, w).Code)
	})

	t.Run("Google回调", func(t *testing.T) {
		w := send(r, http.MethodGet, "/auth/google/callback?code=abc&state=s-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc", f.google.Code)
		assert.Equal(t, "s-1", f.google.State)
	})

	t.Run("个人资料", func(t *testing.T) {
		w := send(r, http.MethodGet, "/users/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, currentUser.String(), decode(t, w).Data.(map[string]interface{})["id"])
	})
}

// ========== 健康检查 ==========

type checkerFn func(context.Context) error

func (fn checkerFn) Check(ctx context.Context) error { return fn(ctx) }

func TestHealthHandler(t *testing.T) {
	var down error
	h := NewHealthHandler(checkerFn(func(context.Context) error { return down }))
	r := gin.New()
	r.GET("/api/healthchecker", h.HealthCheck)

	t.Run("正常", func(t *testing.T) {
		w := send(r, http.MethodGet, "/api/healthchecker", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"code":0,"message":"success","data":{"status":"ok"}}`, w.Body.String())
	})

	t.Run("数据库不可用", func(t *testing.T) {
		down = apperrors.WithCause(apperrors.ErrDatabaseError, errors.New("dial tcp: connection refused"))
		w := send(r, http.MethodGet, "/api/healthchecker", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, decode(t, w).Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}
