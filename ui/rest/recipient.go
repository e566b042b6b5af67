package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgError "github.com/sayedabdulkarim/message-scheduler/pkg/error"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
)

type Recipient struct {
	Store repository.IStore
}

func InitRestRecipient(app fiber.Router, store repository.IStore) Recipient {
	handler := Recipient{Store: store}

	group := app.Group("/recipients")
	group.Post("/", handler.Create)
	group.Get("/", handler.List)
	group.Delete("/:id", handler.Delete)

	return handler
}

func (handler *Recipient) Create(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	var request RecipientRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(request.Validate())

	conn, err := handler.Store.GetConnection(c.UserContext(), request.PlatformID)
	utils.PanicIfNeeded(err)
	if conn.UserID != userID {
		panic(pkgError.NotFoundError("platform connection not found"))
	}

	now := time.Now().UTC()
	recipient := platform.Recipient{
		ID:           uuid.NewString(),
		UserID:       userID,
		ConnectionID: request.PlatformID,
		Name:         request.Name,
		Identifier:   request.Identifier,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	utils.PanicIfNeeded(handler.Store.CreateRecipient(c.UserContext(), recipient))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Recipient created",
		Results: recipient,
	})
}

func (handler *Recipient) List(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	recipients, err := handler.Store.ListRecipients(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recipients retrieved",
		Results: recipients,
	})
}

func (handler *Recipient) Delete(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)
	id := c.Params("id")

	recipients, err := handler.Store.GetRecipients(c.UserContext(), []string{id})
	utils.PanicIfNeeded(err)
	if len(recipients) == 0 || recipients[0].UserID != userID {
		panic(pkgError.NotFoundError("recipient not found"))
	}

	utils.PanicIfNeeded(handler.Store.DeleteRecipient(c.UserContext(), id))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recipient deleted",
	})
}
