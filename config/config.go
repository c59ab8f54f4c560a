package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Workspace WorkspaceConfig
	LLM       LLMConfig
	Moodboard MoodboardConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	// Addr is optional; when empty the wizard state store falls back to the
	// in-memory implementation.
	Addr string
}

type TelegramConfig struct {
	BotToken string
	AdminID  int64
	// PublicBaseURL is only used in webhook mode, e.g. "bot.example.com".
	PublicBaseURL string
}

type WorkspaceConfig struct {
	APIKey     string
	DatabaseID string
	TitleProp  string
	StatusProp string
}

type LLMConfig struct {
	APIKey string
	Model  string
}

type MoodboardConfig struct {
	BaseURL string
	Model   string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sidekick"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("BOT_TOKEN", ""),
			AdminID:       getEnvAsInt64("TELEGRAM_ADMIN_ID", 0),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		},
		Workspace: WorkspaceConfig{
			APIKey:     getEnv("NOTION_API_KEY", ""),
			DatabaseID: getEnv("NOTION_DB_ID", ""),
			TitleProp:  getEnv("NOTION_TITLE_PROPERTY_NAME", "Name"),
			StatusProp: getEnv("NOTION_STATUS_PROPERTY_NAME", "Status"),
		},
		LLM: LLMConfig{
			APIKey: getEnv("LLM_API_KEY", ""),
			Model:  getEnv("LLM_MODEL", "gemini-2.0-flash"),
		},
		Moodboard: MoodboardConfig{
			BaseURL: getEnv("MOODBOARD_API_URL", "https://subnp.com/api/free/generate"),
			Model:   getEnv("MOODBOARD_MODEL", "turbo"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects a configuration that would make the bot unusable. A missing
// admin ID means every inbound update would be dropped by the access filter,
// so it is treated the same as a missing credential.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.Telegram.AdminID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_ID is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Workspace.APIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is required")
	}

	if c.Workspace.DatabaseID == "" {
		return fmt.Errorf("NOTION_DB_ID is required")
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
