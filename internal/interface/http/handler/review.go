package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreview "github.com/xiebiao/kidsbook/internal/application/review"
	"github.com/xiebiao/kidsbook/internal/interface/http/dto"
	"github.com/xiebiao/kidsbook/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/response"
)

// ReviewPoster 发表评论
type ReviewPoster interface {
	Execute(ctx context.Context, req appreview.PostReviewRequest) (*appreview.ReviewResponse, error)
}

// ReviewUpdater 修改评论
type ReviewUpdater interface {
	Execute(ctx context.Context, req appreview.UpdateReviewRequest) (*appreview.ReviewResponse, error)
}

// ReviewDeleter 删除评论
type ReviewDeleter interface {
	Execute(ctx context.Context, userID, reviewID uuid.UUID) error
}

// ReviewLister 按图书或按作者列出评论
type ReviewLister interface {
	ByBook(ctx context.Context, bookID uuid.UUID) ([]*appreview.ReviewResponse, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]*appreview.ReviewResponse, error)
}

// ReviewHandler 评论HTTP处理器
// 写操作都按当前登录用户限定范围，别人的评论表现为不存在
type ReviewHandler struct {
	poster  ReviewPoster
	updater ReviewUpdater
	deleter ReviewDeleter
	lister  ReviewLister
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(poster ReviewPoster, updater ReviewUpdater, deleter ReviewDeleter, lister ReviewLister) *ReviewHandler {
	return &ReviewHandler{
		poster:  poster,
		updater: updater,
		deleter: deleter,
		lister:  lister,
	}
}

// PostReview 发表评论
// @Summary      发表评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateReviewRequest true "评论内容"
// @Success      201 {object} response.Response{data=appreview.ReviewResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/reviews [post]
func (h *ReviewHandler) PostReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.poster.Execute(c.Request.Context(), appreview.PostReviewRequest{
		UserID:     middleware.MustGetUserID(c),
		BookID:     bookID,
		ReviewText: req.ReviewText,
		Rate:       *req.Rate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateReview 修改自己的评论
// @Summary      修改评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "评论ID"
// @Param        request body dto.UpdateReviewRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appreview.ReviewResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updater.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		UserID:     middleware.MustGetUserID(c),
		ReviewID:   reviewID,
		ReviewText: req.ReviewText,
		Rate:       req.Rate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview 删除自己的评论
// @Summary      删除评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "评论ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.deleter.Execute(c.Request.Context(), middleware.MustGetUserID(c), reviewID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": reviewID.String()})
}

// ListBookReviews 某本书的评论，新的在前
// @Summary      图书评论
// @Tags         评论
// @Produce      json
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=[]appreview.ReviewResponse}
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.lister.ByBook(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyReviews 当前用户的评论
// @Summary      我的评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appreview.ReviewResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/reviews/me [get]
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	result, err := h.lister.Mine(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// pathUUID 解析路径参数，失败时已写出400
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperrors.WithMessage(apperrors.ErrInvalidParams, "无效的ID: "+c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}
