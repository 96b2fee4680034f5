package relational

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 这里是infrastructure层的数据模型，带GORM tag
// domain层的实体不依赖GORM，Repository负责两者之间的转换
// 表名与 catalog 包里手写SQL使用的表名必须一致

// UserModel 用户表
// 手机号、Google ID可为空；唯一索引允许多个NULL
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"uniqueIndex:idx_users_email;size:100;not null;comment:邮箱"`
	Username     string    `gorm:"size:50;not null;comment:用户名"`
	FirstName    string    `gorm:"size:50;comment:名"`
	LastName     string    `gorm:"size:50;comment:姓"`
	PhoneNumber  *string   `gorm:"uniqueIndex:idx_users_phone;size:20;comment:手机号"`
	Role         string    `gorm:"size:20;not null;default:User;comment:角色"`
	LoginMethod  string    `gorm:"size:20;not null;default:local;comment:登录方式"`
	GoogleID     *string   `gorm:"uniqueIndex:idx_users_google_id;size:64;comment:Google账号ID"`
	Avatar       string    `gorm:"size:500;comment:头像URL"`
	Password     string    `gorm:"size:255;comment:密码（bcrypt）"`
	RefreshToken *string   `gorm:"size:1024;comment:当前有效的刷新令牌"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// BookModel 图书表；子表全部随图书级联删除
type BookModel struct {
	ID               uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Title            string          `gorm:"index:idx_books_search;size:255;not null;comment:书名"`
	Author           string          `gorm:"index:idx_books_search;size:255;not null;comment:作者"`
	Genre            string          `gorm:"index;size:32;not null"`
	Language         string          `gorm:"index;size:32;not null"`
	OriginalLanguage *string         `gorm:"size:32"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:原价"`
	Discount         decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0;comment:折扣率0-1"`
	StockQuantity    int             `gorm:"not null;default:0"`
	IsBestseller     bool            `gorm:"not null;default:false"`
	IsPublish        bool            `gorm:"not null;default:true"`
	IsGifted         bool            `gorm:"not null;default:false"`
	IsAvailable      bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time       `gorm:"index"`
	UpdatedAt        time.Time

	Info       *BookInfoModel   `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Categories []CategoryModel  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	TargetAges []TargetAgeModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	BookTypes  []BookTypeModel  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Images     []ImageModel     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Reviews    []ReviewModel    `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (BookModel) TableName() string { return "books" }

// BookInfoModel 图书扩展信息，与图书一对一
type BookInfoModel struct {
	ID              uuid.UUID        `gorm:"type:char(36);primaryKey"`
	BookID          uuid.UUID        `gorm:"type:char(36);uniqueIndex;not null"`
	OriginalTitle   string           `gorm:"size:255"`
	Series          string           `gorm:"size:255"`
	Publisher       string           `gorm:"size:255"`
	PublicationYear *int             `gorm:"index"`
	PageCount       *int             `gorm:"comment:页数"`
	PaperType       string           `gorm:"index;size:32"`
	Translator      string           `gorm:"size:255"`
	CoverType       string           `gorm:"index;size:32"`
	Weight          *decimal.Decimal `gorm:"type:decimal(8,3)"`
	Dimensions      string           `gorm:"size:64"`
	ISBN            string           `gorm:"column:isbn;size:20"`
	ArticleNumber   string           `gorm:"size:64"`
	Description     string           `gorm:"type:text"`
}

func (BookInfoModel) TableName() string { return "books_info" }

func (m *BookInfoModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// 标签表：一本书多行，自增主键

type CategoryModel struct {
	ID       uint      `gorm:"primaryKey"`
	BookID   uuid.UUID `gorm:"type:char(36);index;not null"`
	Category string    `gorm:"index;size:32;not null"`
}

func (CategoryModel) TableName() string { return "categories" }

type TargetAgeModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uuid.UUID `gorm:"type:char(36);index;not null"`
	TargetAge string    `gorm:"index;size:32;not null"`
}

func (TargetAgeModel) TableName() string { return "target_ages" }

type BookTypeModel struct {
	ID       uint      `gorm:"primaryKey"`
	BookID   uuid.UUID `gorm:"type:char(36);index;not null"`
	BookType string    `gorm:"index;size:32;not null"`
}

func (BookTypeModel) TableName() string { return "book_types" }

type ImageModel struct {
	ID       uint      `gorm:"primaryKey"`
	BookID   uuid.UUID `gorm:"type:char(36);index;not null"`
	ImageURL string    `gorm:"column:image_url;size:500;not null"`
}

func (ImageModel) TableName() string { return "images" }

// ReviewModel 评论表
// 图书删除时级联删除；用户删除时 user_id 置空，评论保留
type ReviewModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	BookID     uuid.UUID       `gorm:"type:char(36);index;not null"`
	UserID     *uuid.UUID      `gorm:"type:char(36);index"`
	ReviewText string          `gorm:"type:text;not null"`
	Rate       decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	CreatedAt  time.Time       `gorm:"index"`
	UpdatedAt  time.Time

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

func (ReviewModel) TableName() string { return "reviews" }
