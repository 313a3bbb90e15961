package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// 响应码定义
const (
	CodeSuccess     = 0
	CodeError       = -1
	CodeNotFound    = 404
	CodeConflict    = 409
	CodeServerError = 500
	CodeUnavailable = 503
)

// 响应消息定义
const (
	MsgSuccess     = "success"
	MsgNotFound    = "not found"
	MsgServerError = "server error"
	MsgUnavailable = "service unavailable"
)

// Success 成功响应
func Success(c *fiber.Ctx, data any) error {
	return c.JSON(Response{
		Code:    CodeSuccess,
		Message: MsgSuccess,
		Data:    data,
	})
}

// SuccessWithMessage 成功响应带消息
func SuccessWithMessage(c *fiber.Ctx, message string, data any) error {
	return c.JSON(Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Fail writes an error envelope with the given HTTP status. The envelope code
// mirrors the status.
func Fail(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Code:    status,
		Message: message,
		Data:    data,
	})
}

// Unavailable 服务不可用响应，用于钩子未就绪
func Unavailable(c *fiber.Ctx, message string, data any) error {
	if message == "" {
		message = MsgUnavailable
	}
	return Fail(c, fiber.StatusServiceUnavailable, message, data)
}

// Conflict 状态冲突响应
func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusConflict, message, nil)
}

// NotFound 未找到响应
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = MsgNotFound
	}
	return Fail(c, fiber.StatusNotFound, message, nil)
}

// ServerError 服务器错误响应
func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = MsgServerError
	}
	return Fail(c, fiber.StatusInternalServerError, message, nil)
}

// ErrorHandler renders errors returned by handlers as a Response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := MsgServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return Fail(c, code, message, nil)
}
