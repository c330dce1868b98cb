package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess      = 0
	CodeParamError   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

const (
	CodePoolNotFound         = 1001
	CodePoolSettingsNotFound = 1002
	CodeInvalidPassword      = 1003
	CodeInvalidTransaction   = 1004
	CodeUnknownSettingsField = 1005
	CodeEmailAlreadyExists   = 1006
	CodeEmailNotFound        = 1007
	CodeInvalidCredential    = 1008
	CodeUserNotFound         = 1009
	CodePoolExpired          = 1010
	CodeInvalidSettingsValue = 1011
	CodeTransactionNotFound  = 1012
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 业务码和 HTTP 状态码分开传
// 错误种类到传输层状态码的映射在 handler 层完成（not-found → 404 等）
func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func BusinessError(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}
