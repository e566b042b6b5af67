package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/sayedabdulkarim/message-scheduler/pkg/error"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	whatsapp "github.com/sayedabdulkarim/message-scheduler/platforms/whatsapp"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
)

type Platform struct {
	Store    repository.IStore
	WhatsApp *whatsapp.Manager
}

func InitRestPlatform(app fiber.Router, store repository.IStore, wa *whatsapp.Manager) Platform {
	handler := Platform{Store: store, WhatsApp: wa}

	group := app.Group("/platforms")
	group.Get("/", handler.List)
	group.Post("/email", handler.ConnectEmail)
	group.Post("/telegram", handler.ConnectTelegram)
	group.Post("/whatsapp/connect", handler.ConnectWhatsApp)
	group.Post("/whatsapp/disconnect", handler.DisconnectWhatsApp)
	group.Get("/whatsapp/status", handler.WhatsAppStatus)
	group.Delete("/:platform", handler.Remove)

	return handler
}

func (handler *Platform) List(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	connections, err := handler.Store.ListConnections(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Platform connections retrieved",
		Results: connections,
	})
}

// ConnectEmail records a verified email connection. Ownership of the
// address is established by the upstream auth layer, so no OTP round trip
// happens here.
func (handler *Platform) ConnectEmail(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	var request EmailConnectRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(request.Validate())

	now := time.Now().UTC()
	err := handler.Store.UpsertConnection(c.UserContext(), platform.Connection{
		UserID:      userID,
		Type:        platform.TypeEmail,
		Verified:    true,
		Email:       request.Email,
		ConnectedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Email platform connected",
	})
}

func (handler *Platform) ConnectTelegram(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	var request TelegramConnectRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(request.Validate())

	now := time.Now().UTC()
	err := handler.Store.UpsertConnection(c.UserContext(), platform.Connection{
		UserID:      userID,
		Type:        platform.TypeTelegram,
		Verified:    true,
		ChatID:      request.ChatID,
		Username:    request.Username,
		ConnectedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Telegram platform connected",
	})
}

// ConnectWhatsApp starts a pairing session. QR codes arrive over the
// caller's websocket connection, not in this response.
func (handler *Platform) ConnectWhatsApp(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	err := handler.WhatsApp.Connect(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "WhatsApp pairing started, watch the websocket for the QR code",
	})
}

func (handler *Platform) DisconnectWhatsApp(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	err := handler.WhatsApp.Disconnect(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "WhatsApp disconnected",
	})
}

func (handler *Platform) WhatsAppStatus(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	status, err := handler.WhatsApp.Status(c.UserContext(), userID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "WhatsApp status retrieved",
		Results: status,
	})
}

// Remove unverifies a platform connection without touching its schedules;
// those keep firing and land failed log entries until repointed.
func (handler *Platform) Remove(c *fiber.Ctx) error {
	userID := AuthenticatedUser(c)

	platformType := platform.Type(c.Params("platform"))
	if !platformType.Valid() {
		panic(pkgError.ValidationError("unknown platform: " + c.Params("platform")))
	}

	if platformType == platform.TypeWhatsApp {
		err := handler.WhatsApp.Disconnect(c.UserContext(), userID)
		utils.PanicIfNeeded(err)
	} else {
		err := handler.Store.SetConnectionVerified(c.UserContext(), userID, platformType, false)
		utils.PanicIfNeeded(err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Platform disconnected",
	})
}
