package config

var (
	AppVersion        = "v1.0.0"
	AppPort           = "3000"
	AppDebug          = false
	AppBasePath       = ""
	AppTrustedProxies []string

	// Database
	DBDriver = "sqlite"
	DBName   = "storages/scheduler.db"
	DBHost   = "localhost"
	DBPort   = 5432
	DBUser   = ""
	DBPass   = ""

	// Paths
	PathQrCode   = "statics/qrcode"
	PathStorages = "storages"

	// Scheduler
	SchedulerTickSeconds = 30

	// WhatsApp
	WhatsappLogLevel = "ERROR"
	WhatsappTypeUser = "@s.whatsapp.net"

	// SMTP (email platform)
	SMTPHost = ""
	SMTPPort = "587"
	SMTPUser = ""
	SMTPPass = ""
	SMTPFrom = ""

	// Telegram (bot platform)
	TelegramBotToken = ""

	// Security
	AppSecretKey = "changeme_please_change_me_in_prod_12345"
)
