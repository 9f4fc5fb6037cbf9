package controller

import (
	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/serverutils"
	"github.com/mustafa-mbari/aiwmsa/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackController(feedbackService service.IFeedbackService) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feedback/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	userId := requestUser(ctx)
	if userId == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.SubmitFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.feedbackService.Submit(ctx.Context(), *userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit feedback", res))
}
