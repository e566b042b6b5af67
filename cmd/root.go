package cmd

import (
	"os"
	"strings"
	"time"

	globalConfig "github.com/sayedabdulkarim/message-scheduler/config"
	"github.com/sayedabdulkarim/message-scheduler/pkg/crypto"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Message scheduler API",
	Long: `Schedules one-time and recurring messages and dispatches them
over email, WhatsApp and Telegram.`,
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig loads configuration from environment variables
func initEnvConfig() {
	// Application settings
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		globalConfig.AppBasePath = envBasePath
	}
	if envTrustedProxies := viper.GetString("app_trusted_proxies"); envTrustedProxies != "" {
		globalConfig.AppTrustedProxies = strings.Split(envTrustedProxies, ",")
	}
	if envSecret := viper.GetString("app_secret_key"); envSecret != "" {
		globalConfig.AppSecretKey = envSecret
	}

	// Database settings
	if envDriver := viper.GetString("db_driver"); envDriver != "" {
		globalConfig.DBDriver = envDriver
	}
	if envName := viper.GetString("db_name"); envName != "" {
		globalConfig.DBName = envName
	}
	if envHost := viper.GetString("db_host"); envHost != "" {
		globalConfig.DBHost = envHost
	}
	if envPort := viper.GetInt("db_port"); envPort != 0 {
		globalConfig.DBPort = envPort
	}
	if envUser := viper.GetString("db_user"); envUser != "" {
		globalConfig.DBUser = envUser
	}
	if envPass := viper.GetString("db_pass"); envPass != "" {
		globalConfig.DBPass = envPass
	}

	// Scheduler settings
	if envTick := viper.GetInt("scheduler_tick_seconds"); envTick > 0 {
		globalConfig.SchedulerTickSeconds = envTick
	}

	// SMTP settings
	if envHost := viper.GetString("smtp_host"); envHost != "" {
		globalConfig.SMTPHost = envHost
	}
	if envPort := viper.GetString("smtp_port"); envPort != "" {
		globalConfig.SMTPPort = envPort
	}
	if envUser := viper.GetString("smtp_user"); envUser != "" {
		globalConfig.SMTPUser = envUser
	}
	if envPass := viper.GetString("smtp_pass"); envPass != "" {
		globalConfig.SMTPPass = envPass
	}
	if envFrom := viper.GetString("smtp_from"); envFrom != "" {
		globalConfig.SMTPFrom = envFrom
	}

	// Telegram settings
	if envToken := viper.GetString("telegram_bot_token"); envToken != "" {
		globalConfig.TelegramBotToken = envToken
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppBasePath,
		"base-path", "",
		globalConfig.AppBasePath,
		`base path for subpath deployment --base-path <string> | example: --base-path="/scheduler"`,
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&globalConfig.AppTrustedProxies,
		"trusted-proxies", "",
		globalConfig.AppTrustedProxies,
		`trusted proxy IP ranges for reverse proxy deployments | example: --trusted-proxies="10.0.0.0/8,172.16.0.0/12"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.DBDriver,
		"db-driver", "",
		globalConfig.DBDriver,
		`database driver, sqlite or postgres | example: --db-driver=postgres`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.DBName,
		"db-name", "",
		globalConfig.DBName,
		`database name, or file path for sqlite | example: --db-name="storages/scheduler.db"`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&globalConfig.SchedulerTickSeconds,
		"tick-seconds", "",
		globalConfig.SchedulerTickSeconds,
		`one-shot scheduler tick interval in seconds | example: --tick-seconds=30`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		globalConfig.WhatsappLogLevel = "DEBUG"
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll(globalConfig.PathStorages, 0755); err != nil {
		logrus.Errorln(err)
	}

	crypto.SetSessionKey(globalConfig.AppSecretKey)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
