package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studio-storefront/pricing"
)

// Config holds everything the service reads from the environment
type Config struct {
	Env     string
	Port    string
	BaseURL string

	// Database
	DBDriver    string // "pgx" or "sqlite"
	DatabaseURL string
	DBPath      string

	// Settings provider: file when SettingsFile is set, database otherwise
	SettingsFile    string
	SettingsRefresh time.Duration
	// SettingsSeed is imported into the database at startup when set
	SettingsSeed string

	CartTTL  time.Duration
	TimeZone *time.Location

	Studio Studio

	LogoPath   string
	ChromePath string

	// Google Drive sharing (optional)
	GoogleCredentials string
	DriveFolderID     string
}

// Studio identifies the business on quotes and WhatsApp messages
type Studio struct {
	Name     string
	Phone    string
	Email    string
	WhatsApp string
	Address  string
}

// LoadEnv loads a .env file outside production.
// Use Overload so .env values override system environment variables.
func LoadEnv(path string) {
	if os.Getenv("ENV") == "production" {
		return
	}
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Overload(path); err != nil {
		log.Printf("⚠️ Warning: .env file not found at %s, using system environment variables", path)
		return
	}
	log.Printf("✅ Loaded environment variables from %s (overriding system variables)", path)
}

// Load reads the configuration from the environment, applying defaults
func Load() *Config {
	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		Port:              strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "pgx")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBPath:            getEnv("DB_PATH", "storefront.db"),
		SettingsFile:      os.Getenv("SETTINGS_FILE"),
		SettingsRefresh:   getDuration("SETTINGS_REFRESH", time.Minute),
		SettingsSeed:      os.Getenv("SETTINGS_SEED"),
		CartTTL:           getDuration("CART_TTL", 24*time.Hour),
		TimeZone:          getLocation("TIME_ZONE", "Europe/Rome"),
		LogoPath:          os.Getenv("LOGO_PATH"),
		ChromePath:        os.Getenv("CHROME_PATH"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:     os.Getenv("DRIVE_FOLDER_ID"),
		Studio: Studio{
			Name:     getEnv("STUDIO_NAME", "Studio Fotografico"),
			Phone:    os.Getenv("STUDIO_PHONE"),
			Email:    os.Getenv("STUDIO_EMAIL"),
			WhatsApp: os.Getenv("STUDIO_WHATSAPP"),
			Address:  os.Getenv("STUDIO_ADDRESS"),
		},
	}

	cfg.BaseURL = strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:"+cfg.Port), "/")
	if cfg.DBDriver == "postgres" {
		cfg.DBDriver = "pgx"
	}

	// Date-only discount bounds are read in the studio's zone
	pricing.SetDateLocation(cfg.TimeZone)
	return cfg
}

// DriveEnabled reports whether quote sharing through Google Drive is configured
func (c *Config) DriveEnabled() bool {
	return c.GoogleCredentials != "" && c.DriveFolderID != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("90s", "24h") or plain seconds
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ Config: invalid %s=%q, using %s", key, raw, fallback)
	return fallback
}

func getLocation(key, fallback string) *time.Location {
	name := getEnv(key, fallback)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ Config: unknown %s=%q, using UTC", key, name)
		return time.UTC
	}
	return loc
}
