package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	globalConfig "github.com/sayedabdulkarim/message-scheduler/config"
	"github.com/sayedabdulkarim/message-scheduler/core/database"
	"github.com/sayedabdulkarim/message-scheduler/platforms/email"
	"github.com/sayedabdulkarim/message-scheduler/platforms/telegram"
	whatsappPlatform "github.com/sayedabdulkarim/message-scheduler/platforms/whatsapp"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/application"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
	"github.com/sayedabdulkarim/message-scheduler/ui/rest"
	"github.com/sayedabdulkarim/message-scheduler/ui/rest/middleware"
	"github.com/sayedabdulkarim/message-scheduler/ui/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the scheduler API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	ctx := context.Background()

	db, err := database.NewDatabase()
	if err != nil {
		logrus.Fatalf("[DB] Failed to open database: %v", err)
	}
	store := repository.NewGormStore(db)
	if err := store.Init(ctx); err != nil {
		logrus.Fatalf("[DB] Failed to migrate schema: %v", err)
	}

	// Delivery backends
	dispatcher := application.NewDispatcher()
	dispatcher.Register(platform.TypeEmail, email.NewSender(
		globalConfig.SMTPHost,
		globalConfig.SMTPPort,
		globalConfig.SMTPUser,
		globalConfig.SMTPPass,
		globalConfig.SMTPFrom,
	))

	telegramSender, err := telegram.NewSender(globalConfig.TelegramBotToken)
	if err != nil {
		logrus.Fatalf("[TELEGRAM] Failed to create bot: %v", err)
	}
	dispatcher.Register(platform.TypeTelegram, telegramSender)

	whatsappManager := whatsappPlatform.NewManager(store, websocket.Notifier{})
	dispatcher.Register(platform.TypeWhatsApp, whatsappPlatform.NewSender(whatsappManager))

	// Scheduling core
	executor := application.NewExecutor(store, dispatcher)
	jobs := application.NewJobScheduler(store, executor,
		time.Duration(globalConfig.SchedulerTickSeconds)*time.Second)
	if err := jobs.Start(ctx); err != nil {
		logrus.Fatalf("[SCHEDULER] Failed to start: %v", err)
	}
	lifecycle := application.NewLifecycle(store, jobs, executor)

	// Reconnect WhatsApp sessions that were live before the last shutdown.
	go restoreWhatsAppSessions(ctx, store, whatsappManager)

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Message Scheduler",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}
	if len(globalConfig.AppTrustedProxies) > 0 {
		fiberConfig.TrustedProxies = globalConfig.AppTrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(globalConfig.AppBasePath + "/api")

	rest.InitRestSchedule(apiGroup, lifecycle)
	rest.InitRestPlatform(apiGroup, store, whatsappManager)
	rest.InitRestRecipient(apiGroup, store)
	rest.InitRestLog(apiGroup, store)
	rest.InitRestHealth(apiGroup, jobs)

	websocket.RegisterRoutes(apiGroup)
	go websocket.RunHub()

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		jobs.Stop()
	}()

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

// restoreWhatsAppSessions reconnects every user whose WhatsApp connection
// was verified when the process last stopped. Users whose session cannot be
// restored stay unverified until they pair again.
func restoreWhatsAppSessions(ctx context.Context, store repository.IStore, manager *whatsappPlatform.Manager) {
	schedules, err := store.ListEnabledSchedules(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[WHATSAPP] Could not list schedules for session restore")
		return
	}

	seen := make(map[string]bool)
	var userIDs []string
	for _, sched := range schedules {
		if seen[sched.UserID] {
			continue
		}
		seen[sched.UserID] = true
		conn, err := store.GetConnectionByUserAndType(ctx, sched.UserID, platform.TypeWhatsApp)
		if err != nil || !conn.Verified {
			continue
		}
		userIDs = append(userIDs, sched.UserID)
	}
	manager.Restore(ctx, userIDs)
}
