package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 註冊審核相關的路由
func RegisterRoutes(app *fiber.App, h *ModerationHandler) {
	app.Get("/", ConnectCheck)
	app.Post("/debug", DebugLogFlag)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	moderationRoutes := app.Group("/moderation")
	moderationRoutes.Post("/jobs", h.Enqueue)
	moderationRoutes.Post("/run", h.Run)
	moderationRoutes.Get("/videos/:video_id", h.GetVideo)
}
