package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
)

type Log struct {
	Store repository.IStore
}

func InitRestLog(app fiber.Router, store repository.IStore) Log {
	handler := Log{Store: store}

	app.Get("/logs", handler.List)

	return handler
}

// List pages through the caller's delivery log, newest first.
func (handler *Log) List(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := handler.Store.ListLogs(c.UserContext(), userID, limit, offset)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Delivery logs retrieved",
		Results: map[string]any{
			"entries": entries,
			"limit":   limit,
			"offset":  offset,
		},
	})
}
