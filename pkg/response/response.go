package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/pkg/logger"
)

// ErrorBody 所有错误响应的结构
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody 无资源返回时的确认
type MessageBody struct {
	Message string `json:"message"`
}

const internalMessage = "Internal server error"

// Success 200 + 资源 JSON
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 201 + 资源 JSON
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Message 200 + {"message": msg}
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageBody{Message: msg})
}

// Fail writes {"error": msg} with the given status and aborts the chain.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

func BadRequest(c *gin.Context, msg string)   { Fail(c, http.StatusBadRequest, msg) }
func Unauthorized(c *gin.Context, msg string) { Fail(c, http.StatusUnauthorized, msg) }
func NotFound(c *gin.Context, msg string)     { Fail(c, http.StatusNotFound, msg) }

// InternalError 记录详细错误并上报 Sentry，客户端只得到通用信息
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub := hub.Clone()
		hub.Scope().SetRequest(c.Request)
		hub.CaptureException(err)
	}
	Fail(c, http.StatusInternalServerError, internalMessage)
}
