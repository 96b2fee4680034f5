package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. 邮箱、手机号唯一性与密码强度由领域服务校验
// 2. 注册不自动登录，客户端随后调用登录接口
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	metrics.InitMetrics()
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Password    string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	u, err := uc.userService.Register(ctx, user.RegisterParams{
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	metrics.RecordAuth("signup", err)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// GetProfileUseCase 当前用户资料
type GetProfileUseCase struct {
	userService user.Service
}

// NewGetProfileUseCase 创建资料查询用例
func NewGetProfileUseCase(userService user.Service) *GetProfileUseCase {
	return &GetProfileUseCase{userService: userService}
}

// Execute 用户已被删除时返回 ErrUserNotFound
func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}
