package review

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// 评论约束
const (
	MaxTextLength = 2000
	MaxRate       = 5
)

var (
	ErrReviewNotFound = apperrors.ErrReviewNotFound
	ErrBookNotFound   = apperrors.ErrBookNotFound
	ErrInvalidText    = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容长度应为1-2000个字符")
	ErrInvalidRate    = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须大于0且不超过5")
)

// Review 评论实体
// 属于一本书（随书删除）；用户删除后 UserID 置空，评论保留
type Review struct {
	ID        uuid.UUID
	BookID    uuid.UUID
	UserID    *uuid.UUID
	Text      string
	Rate      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview 创建评论
func NewReview(bookID, userID uuid.UUID, text string, rate decimal.Decimal) (*Review, error) {
	text = strings.TrimSpace(text)
	if err := validate(text, rate); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Review{
		ID:        uuid.New(),
		BookID:    bookID,
		UserID:    &userID,
		Text:      text,
		Rate:      rate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Edit 修改内容或评分，nil 表示不修改
func (r *Review) Edit(text *string, rate *decimal.Decimal) error {
	newText, newRate := r.Text, r.Rate
	if text != nil {
		newText = strings.TrimSpace(*text)
	}
	if rate != nil {
		newRate = *rate
	}
	if err := validate(newText, newRate); err != nil {
		return err
	}
	r.Text, r.Rate = newText, newRate
	r.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 是否由该用户发表
func (r *Review) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID != nil && *r.UserID == userID
}

func validate(text string, rate decimal.Decimal) error {
	if n := utf8.RuneCountInString(text); n < 1 || n > MaxTextLength {
		return ErrInvalidText
	}
	if !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(MaxRate)) {
		return ErrInvalidRate
	}
	return nil
}

// View 评论 + 作者展示信息
type View struct {
	Review
	UserName string
	Avatar   string
}
