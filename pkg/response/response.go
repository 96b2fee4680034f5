package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// Response 统一响应结构
// Code是业务错误码（0表示成功），HTTP状态码由错误码族推导
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LoggerKey gin上下文里请求级logger的key，由访问日志中间件写入
const LoggerKey = "logger"

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
// 内部错误（5xx或带底层原因的错误）写日志，客户端只看到友好提示
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	if status >= http.StatusInternalServerError || appErr.Err != nil {
		entry := requestLogger(c).WithField("code", appErr.Code)
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		if status >= http.StatusInternalServerError {
			entry.Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}
	}

	c.AbortWithStatusJSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

// BindError 参数绑定/校验失败
func BindError(c *gin.Context, err error) {
	Error(c, apperrors.WithMessage(apperrors.ErrBindError, "参数错误: "+err.Error()))
}
