package initializers

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                string
	DBDriver            string
	DBPath              string
	DBURL               string
	Secret              string
	AdminEmail          string
	AdminPassword       string
	FrontendURLs        []string
	CookieSecure        bool
	ResendAPIKey        string
	EmailFrom           string
	FirebaseAccountPath string
	LogLevel            string
}

var Cfg = defaultConfig()

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}
}

func defaultConfig() Config {
	return Config{
		Port:      "3001",
		DBDriver:  "sqlite",
		DBPath:    "data/campuslease.db",
		Secret:    "dev-secret",
		EmailFrom: "CampusLease <no-reply@campuslease.com>",
		LogLevel:  "info",
	}
}

// LoadConfig reads the process environment into Cfg. Unset values keep their defaults.
func LoadConfig() {
	cfg := defaultConfig()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.DBURL = os.Getenv("DB_URL")
	cfg.Secret = getEnv("SECRET", cfg.Secret)
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.EmailFrom = getEnv("EMAIL_FROM", cfg.EmailFrom)
	cfg.FirebaseAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	frontendURL := os.Getenv("FRONTEND_URL")
	cfg.FrontendURLs = splitOrigins(frontendURL)

	secure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))
	cfg.CookieSecure = secure || (frontendURL != "" &&
		!strings.Contains(frontendURL, "localhost") &&
		!strings.Contains(frontendURL, "127.0.0.1"))

	if cfg.Secret == "dev-secret" {
		log.Warn().Msg("SECRET not set, signing sessions with the development key")
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set, admin login is disabled")
	}

	Cfg = cfg
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func splitOrigins(value string) []string {
	var origins []string
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			origins = append(origins, entry)
		}
	}
	return origins
}
