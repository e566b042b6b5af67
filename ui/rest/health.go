package rest

import (
	"github.com/gofiber/fiber/v2"
	globalConfig "github.com/sayedabdulkarim/message-scheduler/config"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/application"
)

type Health struct {
	Jobs *application.JobScheduler
}

func InitRestHealth(app fiber.Router, jobs *application.JobScheduler) Health {
	handler := Health{Jobs: jobs}

	app.Get("/health", handler.GetStatus)

	return handler
}

func (handler *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"version":     globalConfig.AppVersion,
		"active_jobs": handler.Jobs.JobCount(),
	})
}
