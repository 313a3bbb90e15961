package middleware

import (
	"fmt"

	"yqhp/hookserver/common/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Recover 异常恢复中间件，panic 记录到日志后交给 ErrorHandler 返回 500
func Recover() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			logger.L().Named("http").Error("handler panic",
				zap.String("path", c.Path()), zap.String("panic", fmt.Sprint(e)), zap.Stack("stack"))
		},
	})
}
