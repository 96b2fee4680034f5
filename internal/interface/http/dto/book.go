package dto

import (
	"github.com/shopspring/decimal"

	"github.com/xiebiao/kidsbook/internal/domain/book"
)

// ListBooksQuery HTTP图书目录查询参数
// 分页、排序有默认值；筛选参数保持字符串，由领域层解析与校验
// 多值参数（categories、targetAges、bookType）用逗号分隔
type ListBooksQuery struct {
	Limit     int    `form:"limit,default=10" binding:"min=1,max=100" example:"10"`
	Offset    int    `form:"offset,default=0" binding:"min=0" example:"0"`
	SortBy    string `form:"sortBy,default=actualPrice" binding:"max=50" example:"actualPrice"`
	SortOrder string `form:"sortOrder,default=asc" binding:"max=10" example:"asc"`

	Author          string `form:"author" binding:"max=255"`
	Title           string `form:"title" binding:"max=255"`
	Genre           string `form:"genre" example:"Fantasy"`
	Categories      string `form:"categories" example:"Fantasy,Adventure"`
	TargetAges      string `form:"targetAges" example:"5-8,8-12"`
	BookType        string `form:"bookType" example:"Paper"`
	PaperType       string `form:"paperType" example:"Offset"`
	Language        string `form:"language" example:"Ukrainian"`
	CoverType       string `form:"coverType" example:"Hardcover"`
	DiscountMin     string `form:"discountMin" example:"0.1"`
	DiscountMax     string `form:"discountMax" example:"0.5"`
	PriceMin        string `form:"priceMin" example:"100"`
	PriceMax        string `form:"priceMax" example:"500"`
	CreatedAtAfter  string `form:"createdAtAfter" example:"2024-01-01"`
	CreatedAtBefore string `form:"createdAtBefore" example:"2024"`
}

// Filters 非空参数 -> snake_case 筛选参数集
func (q ListBooksQuery) Filters() map[string]string {
	all := map[string]string{
		book.ParamAuthor:          q.Author,
		book.ParamTitle:           q.Title,
		book.ParamGenre:           q.Genre,
		book.ParamCategories:      q.Categories,
		book.ParamTargetAges:      q.TargetAges,
		book.ParamBookType:        q.BookType,
		book.ParamPaperType:       q.PaperType,
		book.ParamLanguage:        q.Language,
		book.ParamCoverType:       q.CoverType,
		book.ParamDiscountMin:     q.DiscountMin,
		book.ParamDiscountMax:     q.DiscountMax,
		book.ParamPriceMin:        q.PriceMin,
		book.ParamPriceMax:        q.PriceMax,
		book.ParamCreatedAtAfter:  q.CreatedAtAfter,
		book.ParamCreatedAtBefore: q.CreatedAtBefore,
	}
	out := make(map[string]string)
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// AddBookRequest HTTP图书录入请求（管理员）
// 枚举字段填数据库编码，如 genre=Fantasy、coverType=Hardcover
type AddBookRequest struct {
	Title            string           `json:"title" binding:"required,max=255" example:"Маленький принц"`
	Author           string           `json:"author" binding:"required,max=255" example:"Антуан де Сент-Екзюпері"`
	Genre            string           `json:"genre" example:"fairyTales"`
	Language         string           `json:"language" example:"Ukrainian"`
	OriginalLanguage string           `json:"originalLanguage" example:"French"`
	Price            *decimal.Decimal `json:"price" binding:"required" swaggertype:"number" example:"250"`
	Discount         decimal.Decimal  `json:"discount" swaggertype:"number" example:"0.1"`
	StockQuantity    int              `json:"stockQuantity" binding:"min=0" example:"20"`
	IsBestseller     bool             `json:"isBestseller"`
	IsGifted         bool             `json:"isGifted"`
	IsAvailable      bool             `json:"isAvailable" example:"true"`

	Info *BookInfoRequest `json:"info"`

	Categories []string `json:"categories" example:"ChildrenLiterature"`
	TargetAges []string `json:"targetAges" example:"5-8"`
	BookType   []string `json:"bookType" example:"Paper"`
	Images     []string `json:"images" binding:"dive,url,max=500"`
}

// BookInfoRequest 扩展信息
type BookInfoRequest struct {
	OriginalTitle   string           `json:"originalTitle" binding:"max=255"`
	Series          string           `json:"series" binding:"max=255"`
	Publisher       string           `json:"publisher" binding:"max=255"`
	PublicationYear *int             `json:"publicationYear" binding:"omitempty,min=1000,max=9999"`
	PageCount       *int             `json:"pageCount" binding:"omitempty,min=1"`
	PaperType       string           `json:"paperType"`
	Translator      string           `json:"translator" binding:"max=255"`
	CoverType       string           `json:"coverType"`
	Weight          *decimal.Decimal `json:"weight" swaggertype:"number"`
	Dimensions      string           `json:"dimensions" binding:"max=100"`
	ISBN            string           `json:"isbn" binding:"max=20"`
	ArticleNumber   string           `json:"articleNumber" binding:"max=50"`
	Description     string           `json:"description" binding:"max=5000"`
}
