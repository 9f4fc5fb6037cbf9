package controller

import (
	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/serverutils"
	"github.com/mustafa-mbari/aiwmsa/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	LoadMore(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	answerService service.IAnswerService
}

func NewSearchController(searchService service.ISearchService, answerService service.IAnswerService) ISearchController {
	return &searchController{
		searchService: searchService,
		answerService: answerService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	// Search is open to anonymous users; a valid token scopes history and
	// cancellation to the account instead of the client address.
	h := r.Group("/search/v1")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Post("", c.Search)
	h.Post("more", c.LoadMore)
	h.Post("answer", c.Answer)
	h.Get("suggestions", c.Suggestions)
}

// requestUser extracts the authenticated user id; nil when the claim is
// missing or malformed.
func requestUser(ctx *fiber.Ctx) *uuid.UUID {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return nil
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return nil
	}
	return &userId
}

// clientKey scopes in-flight cancellation: one live search per user, falling
// back to the remote address for anonymous clients.
func clientKey(ctx *fiber.Ctx) string {
	if userId := requestUser(ctx); userId != nil {
		return userId.String()
	}
	return ctx.IP()
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), requestUser(ctx), clientKey(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}

func (c *searchController) LoadMore(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.LoadMore(ctx.Context(), requestUser(ctx), clientKey(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success load more", res))
}

func (c *searchController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.answerService.Answer(ctx.Context(), requestUser(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer", res))
}

func (c *searchController) Suggestions(ctx *fiber.Ctx) error {
	prefix := ctx.Query("q")

	res, err := c.searchService.Suggestions(ctx.Context(), prefix)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggestions", res))
}
