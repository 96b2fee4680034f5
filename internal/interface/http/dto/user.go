package dto

// SignupRequest HTTP层注册请求
// 说明：HTTP层只校验格式，密码强度与唯一性由领域服务判断
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email" example:"olena@example.com"`
	Username    string `json:"username" binding:"required,min=5,max=50" example:"olena_k"`
	FirstName   string `json:"firstName" binding:"max=50" example:"Olena"`
	LastName    string `json:"lastName" binding:"max=50" example:"Koval"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=16" example:"+380501234567"`
	Password    string `json:"password" binding:"required,min=8,max=20" example:"Secret123"`
}

// LoginRequest login 为邮箱或手机号
type LoginRequest struct {
	Login    string `json:"login" binding:"required" example:"olena@example.com"`
	Password string `json:"password" binding:"required" example:"Secret123"`
}

// RefreshRequest 用Refresh Token换发
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// GoogleCallbackQuery Google回调参数
type GoogleCallbackQuery struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}
