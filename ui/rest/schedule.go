package rest

import (
	"github.com/gofiber/fiber/v2"
	pkgError "github.com/sayedabdulkarim/message-scheduler/pkg/error"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/application"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
)

type Schedule struct {
	Service *application.Lifecycle
}

func InitRestSchedule(app fiber.Router, service *application.Lifecycle) Schedule {
	handler := Schedule{Service: service}

	group := app.Group("/schedules")
	group.Post("/", handler.Create)
	group.Get("/", handler.List)
	group.Get("/:id", handler.Get)
	group.Put("/:id", handler.Update)
	group.Patch("/:id/toggle", handler.Toggle)
	group.Post("/:id/test", handler.Test)
	group.Delete("/:id", handler.Delete)

	return handler
}

func (handler *Schedule) Create(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	var request ScheduleRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(request.Validate())

	created, err := handler.Service.Create(c.UserContext(), request.toDomain(userID))
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Schedule created",
		Results: created,
	})
}

func (handler *Schedule) List(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	schedules, err := handler.Service.List(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Schedules retrieved",
		Results: schedules,
	})
}

func (handler *Schedule) Get(c *fiber.Ctx) error {
	sched := handler.owned(c)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Schedule retrieved",
		Results: sched,
	})
}

func (handler *Schedule) Update(c *fiber.Ctx) error {
	sched := handler.owned(c)

	var request ScheduleRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(request.Validate())

	next := request.toDomain(sched.UserID)
	next.ID = sched.ID
	next.Enabled = sched.Enabled
	next.CreatedAt = sched.CreatedAt

	updated, err := handler.Service.Update(c.UserContext(), next)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Schedule updated",
		Results: updated,
	})
}

func (handler *Schedule) Toggle(c *fiber.Ctx) error {
	sched := handler.owned(c)

	toggled, err := handler.Service.Toggle(c.UserContext(), sched.ID)
	utils.PanicIfNeeded(err)

	message := "Schedule disabled"
	if toggled.Enabled {
		message = "Schedule enabled"
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: toggled,
	})
}

// Test fires the schedule immediately, bypassing its trigger. Delivery
// results land in the delivery log like any scheduled run.
func (handler *Schedule) Test(c *fiber.Ctx) error {
	sched := handler.owned(c)

	err := handler.Service.RunNow(c.UserContext(), sched.ID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Schedule executed",
	})
}

func (handler *Schedule) Delete(c *fiber.Ctx) error {
	sched := handler.owned(c)

	err := handler.Service.Delete(c.UserContext(), sched.ID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Schedule deleted",
	})
}

// owned loads the schedule and enforces that it belongs to the caller.
// Foreign schedules are indistinguishable from missing ones.
func (handler *Schedule) owned(c *fiber.Ctx) schedule.Schedule {
	userID := AuthenticatedUser(c)

	sched, err := handler.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)
	if sched.UserID != userID {
		panic(pkgError.NotFoundError("schedule not found"))
	}
	return sched
}
