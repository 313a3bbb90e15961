package middleware

import (
	"yqhp/hookserver/common/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestID 请求ID中间件，生成的ID存放在 Locals("requestid")
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: "requestid",
	})
}

// Logger 日志中间件
func Logger() fiber.Handler {
	return logger.Middleware()
}
