package serverutils

import (
	"errors"

	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses so controllers
// can just return them. Unknown errors become opaque 500s; internals never
// leak to clients.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		switch {
		case errors.Is(err, search.ErrInvalidQuery):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, search.ErrCancelled):
			// 409: the client superseded this request itself.
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse("superseded by a newer search"))
		case errors.Is(err, search.ErrSearchUnavailable),
			errors.Is(err, embedding.ErrProvider),
			errors.Is(err, llm.ErrProvider):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("search is temporarily unavailable, please retry"))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
		}
	}
}
