package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/zwave-configurator/internal/product"
	"github.com/taoyao-code/zwave-configurator/internal/service"
)

// StandardResponse 标准响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功, >0=错误码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, StandardResponse{
		Code:      0,
		Message:   "success",
		Data:      data,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Unix(),
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, StandardResponse{
		Code:      status,
		Message:   message,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Unix(),
	})
}

// statusFor 业务错误 -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInstallation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInstallationNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrParameterNotFound),
		errors.Is(err, product.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProductNotSelected),
		errors.Is(err, service.ErrProductMismatch):
		return http.StatusConflict
	case errors.Is(err, service.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
