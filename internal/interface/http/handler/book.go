package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appbook "github.com/xiebiao/kidsbook/internal/application/book"
	"github.com/xiebiao/kidsbook/internal/interface/http/dto"
	"github.com/xiebiao/kidsbook/pkg/response"
)

// BookLister 目录查询用例
type BookLister interface {
	Execute(ctx context.Context, req appbook.ListBooksRequest) (*appbook.ListBooksResponse, error)
}

// BookAdder 图书录入用例
type BookAdder interface {
	Execute(ctx context.Context, req appbook.AddBookRequest) (*appbook.AddBookResponse, error)
}

// BookHandler 图书HTTP处理器
type BookHandler struct {
	lister BookLister
	adder  BookAdder
}

// NewBookHandler 创建图书处理器
func NewBookHandler(lister BookLister, adder BookAdder) *BookHandler {
	return &BookHandler{
		lister: lister,
		adder:  adder,
	}
}

// ListBooks 图书目录
// @Summary      图书目录
// @Description  按作者、标题、分类、年龄段、价格、折扣、上架时间等条件筛选，排序并分页
// @Tags         图书
// @Produce      json
// @Param        query query dto.ListBooksQuery false "筛选、排序与分页"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "没有符合条件的图书"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.lister.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Filters:   q.Filters(),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddBook 录入图书
// @Summary      录入图书
// @Description  管理员录入图书及其扩展信息、分类、年龄段、类型和图片
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.AddBookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.adder.Execute(c.Request.Context(), toAddBookRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func toAddBookRequest(req dto.AddBookRequest) appbook.AddBookRequest {
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}
	out := appbook.AddBookRequest{
		Title:            req.Title,
		Author:           req.Author,
		Genre:            req.Genre,
		Language:         req.Language,
		OriginalLanguage: req.OriginalLanguage,
		Price:            price,
		Discount:         req.Discount,
		StockQuantity:    req.StockQuantity,
		IsBestseller:     req.IsBestseller,
		IsGifted:         req.IsGifted,
		IsAvailable:      req.IsAvailable,
		Categories:       req.Categories,
		TargetAges:       req.TargetAges,
		BookTypes:        req.BookType,
		Images:           req.Images,
	}
	if info := req.Info; info != nil {
		out.Info = &appbook.AddBookInfo{
			OriginalTitle:   info.OriginalTitle,
			Series:          info.Series,
			Publisher:       info.Publisher,
			PublicationYear: info.PublicationYear,
			PageCount:       info.PageCount,
			PaperType:       info.PaperType,
			Translator:      info.Translator,
			CoverType:       info.CoverType,
			Weight:          info.Weight,
			Dimensions:      info.Dimensions,
			ISBN:            info.ISBN,
			ArticleNumber:   info.ArticleNumber,
			Description:     info.Description,
		}
	}
	return out
}
