package dto

import "github.com/shopspring/decimal"

// CreateReviewRequest 发表评论
// rate 的取值范围 (0, 5] 由领域层校验
type CreateReviewRequest struct {
	BookID     string           `json:"bookId" binding:"required,uuid" example:"0b6f1a52-3b8f-4a8e-9a57-8a8f5a0d1c01"`
	ReviewText string           `json:"reviewText" binding:"required,max=2000" example:"Чудова книга для читання перед сном"`
	Rate       *decimal.Decimal `json:"rate" binding:"required" swaggertype:"number" example:"4.5"`
}

// UpdateReviewRequest 修改评论；字段省略表示不修改
type UpdateReviewRequest struct {
	ReviewText *string          `json:"reviewText" binding:"omitempty,max=2000"`
	Rate       *decimal.Decimal `json:"rate" swaggertype:"number"`
}
