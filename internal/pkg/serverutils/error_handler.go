package serverutils

import (
	"errors"

	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error that reaches the request boundary as a
// BaseResponse. Unknown errors become 500 and are logged.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		var limitErr *dto.LimitExceededError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &limitErr):
			res := &BaseResponse[dto.LimitExceededData]{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   limitErr.Error(),
				ErrorType: string(apperror.TypeQuotaExceeded),
				Data: dto.LimitExceededData{
					Limit:      limitErr.Limit,
					Used:       limitErr.Used,
					ResetAfter: limitErr.ResetAfter,
				},
			}
			return ctx.Status(fiber.StatusTooManyRequests).JSON(res)

		case errors.As(err, &appErr):
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"path":  ctx.Path(),
					"type":  string(appErr.Type),
					"error": err.Error(),
				})
			}
			res := ErrorResponse(appErr.Code, appErr.Message)
			res.ErrorType = string(appErr.Type)
			return ctx.Status(appErr.Code).JSON(res)

		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}

// ErrorHandlerMiddleware resolves handler errors inside the middleware chain
// so outer middleware observes the final status code.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
