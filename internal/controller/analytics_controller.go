package controller

import (
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/pkg/serverutils"
	"github.com/mustafa-mbari/aiwmsa/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	Trending(ctx *fiber.Ctx) error
	Usage(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	EvictCache(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics/v1")
	h.Use(serverutils.JwtMiddleware, serverutils.AdminMiddleware)
	h.Get("trending", c.Trending)
	h.Get("usage", c.Usage)
	h.Get("stats", c.Stats)
	h.Post("cache/evict", c.EvictCache)
}

func (c *analyticsController) Trending(ctx *fiber.Ctx) error {
	windowDays := ctx.QueryInt("window_days", 7)
	limit := ctx.QueryInt("limit", 10)

	res, err := c.analyticsService.Trending(ctx.Context(), windowDays, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success trending", res))
}

func (c *analyticsController) Usage(ctx *fiber.Ctx) error {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if fromParam := ctx.Query("from"); fromParam != "" {
		parsed, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid 'from' date, expected YYYY-MM-DD")
		}
		from = parsed
	}
	if toParam := ctx.Query("to"); toParam != "" {
		parsed, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid 'to' date, expected YYYY-MM-DD")
		}
		to = parsed
	}

	res, err := c.analyticsService.UsageReport(ctx.Context(), from, to)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success usage report", res))
}

func (c *analyticsController) Stats(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 7)
	since := time.Now().AddDate(0, 0, -days)

	res, err := c.analyticsService.SearchStats(ctx.Context(), since)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search stats", res))
}

func (c *analyticsController) EvictCache(ctx *fiber.Ctx) error {
	notUsedForDays := ctx.QueryInt("not_used_days", 30)
	maxUsage := int64(ctx.QueryInt("max_usage", 1))

	removed, err := c.analyticsService.EvictEmbeddingCache(ctx.Context(), notUsedForDays, maxUsage)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success evict cache", fiber.Map{"removed": removed}))
}
