package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，高三位与HTTP状态码族对应（40402 -> 404）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使包装后的预定义错误仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 由业务错误码推导HTTP状态码
func (e *AppError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCause 以预定义错误为模板附加内部原因，返回新实例，不修改模板
func WithCause(tmpl *AppError, err error) *AppError {
	return &AppError{
		Code:    tmpl.Code,
		Message: tmpl.Message,
		Err:     err,
	}
}

// WithMessage 以预定义错误为模板替换提示信息
func WithMessage(tmpl *AppError, message string) *AppError {
	return &AppError{
		Code:    tmpl.Code,
		Message: message,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 参数校验失败
// - 401xx: 未认证
// - 403xx: 无权限
// - 404xx: 资源不存在
// - 409xx: 资源冲突
// - 429xx: 限流
// - 5xxxx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeOAuthProvider = 50003 // 第三方登录服务错误

	// 参数错误（40000-40099）
	ErrCodeInvalidParams = 40000 // 参数错误
	ErrCodeBindError     = 40001 // 参数绑定失败
	ErrCodeInvalidDate   = 40002 // 日期格式错误

	// 认证错误（40100-40199）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidCredentials = 40101 // 账号或密码错误
	ErrCodeInvalidToken       = 40102 // Token无效
	ErrCodeTokenExpired       = 40103 // Token过期
	ErrCodeInvalidOAuthState  = 40104 // OAuth state无效

	// 授权错误（40300-40399）
	ErrCodeForbidden     = 40300 // 无权限
	ErrCodeGoogleAccount = 40301 // Google账号不能使用密码登录

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeReviewNotFound = 40403 // 评论不存在
	ErrCodeNoBooksFound   = 40404 // 没有符合条件的图书

	// 冲突错误（40900-40999）
	ErrCodeConflict       = 40900 // 重复记录(通用)
	ErrCodeEmailDuplicate = 40901 // 邮箱已存在
	ErrCodePhoneDuplicate = 40902 // 手机号已存在

	// 限流（42900-42999）
	ErrCodeTooManyRequests = 42900 // 请求过于频繁
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrOAuthProvider = New(ErrCodeOAuthProvider, "第三方登录服务不可用")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
	ErrInvalidDate   = New(ErrCodeInvalidDate, "日期格式错误（应为YYYY-MM-DD或YYYY）")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "账号或密码错误")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidOAuthState  = New(ErrCodeInvalidOAuthState, "登录请求已失效，请重新发起")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")
	ErrGoogleAccount      = New(ErrCodeGoogleAccount, "该账号已绑定Google，请使用Google登录")

	// 资源不存在
	ErrUserNotFound   = New(ErrCodeUserNotFound, "用户不存在")
	ErrBookNotFound   = New(ErrCodeBookNotFound, "图书不存在")
	ErrReviewNotFound = New(ErrCodeReviewNotFound, "评论不存在")
	ErrNoBooksFound   = New(ErrCodeNoBooksFound, "没有符合条件的图书")

	// 冲突
	ErrConflict       = New(ErrCodeConflict, "记录已存在")
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrPhoneDuplicate = New(ErrCodePhoneDuplicate, "手机号已被注册")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HTTPStatus 业务错误码 -> HTTP状态码
func HTTPStatus(code int) int {
	switch code / 100 {
	case 400:
		return http.StatusBadRequest
	case 401:
		return http.StatusUnauthorized
	case 403:
		return http.StatusForbidden
	case 404:
		return http.StatusNotFound
	case 409:
		return http.StatusConflict
	case 429:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
