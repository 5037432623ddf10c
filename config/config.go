package config

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	PublicBaseURL        string `mapstructure:"PUBLIC_BASE_URL"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	AdminJWTSecret       string `mapstructure:"ADMIN_JWT_SECRET"`
	SMTPHost             string `mapstructure:"SMTP_HOST"`
	SMTPPort             int    `mapstructure:"SMTP_PORT"`
	SMTPUser             string `mapstructure:"SMTP_USER"`
	SMTPPassword         string `mapstructure:"SMTP_PASSWORD"`
	MailFrom             string `mapstructure:"MAIL_FROM"`
	OpsEmail             string `mapstructure:"OPS_EMAIL"`
	SheetServiceURL      string `mapstructure:"SHEET_SERVICE_URL"`
	SheetServiceAPIKey   string `mapstructure:"SHEET_SERVICE_API_KEY"`
	CalendarServiceURL   string `mapstructure:"CALENDAR_SERVICE_URL"`
	MercadoPagoToken     string `mapstructure:"MERCADOPAGO_ACCESS_TOKEN"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "PUBLIC_BASE_URL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"CORS_ALLOW_ORIGINS", "ADMIN_JWT_SECRET",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "MAIL_FROM", "OPS_EMAIL",
		"SHEET_SERVICE_URL", "SHEET_SERVICE_API_KEY", "CALENDAR_SERVICE_URL",
		"MERCADOPAGO_ACCESS_TOKEN", "SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.PublicBaseURL == "" {
		return log.Error("Fatal error: PUBLIC_BASE_URL is required for emailed links")
	}

	if config.AdminJWTSecret == "" {
		return log.Error("Fatal error: ADMIN_JWT_SECRET is required")
	}

	// Mail settings travel together. Leaving them all unset is allowed in
	// development, where the dispatcher logs instead of sending.
	if config.SMTPHost != "" {
		if config.MailFrom == "" {
			return log.Error("Fatal error: MAIL_FROM required when SMTP_HOST is set")
		}
		if config.SMTPPort <= 0 {
			return log.Error("Fatal error: SMTP_PORT required when SMTP_HOST is set")
		}
	}

	if config.SheetServiceURL != "" && config.SheetServiceAPIKey == "" {
		return log.Error(
			"Fatal error: SHEET_SERVICE_API_KEY required when SHEET_SERVICE_URL is set",
		)
	}

	ConfigInstance = config
	return nil
}
