package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string

	// Monitoring
	MonitorCronSpec        string // cron spec for the monitoring cycle
	ReminderCronSpec       string // cron spec for the deadline reminder job
	MonitorWorkers         int    // bounded concurrency for case pipelines
	MonitorFetchTimeoutSec int    // per-case fetch timeout, seconds
	MonitorCycleTimeoutMin int    // whole-cycle deadline, minutes
	BaselinePriority       int    // notification priority when no rule matches

	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent

	// Other
	AllowedOrigins []string
	AppURL         string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "db/app.db"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MonitorCronSpec:        getEnv("MONITOR_CRON", "0 */6 * * *"),
		ReminderCronSpec:       getEnv("REMINDER_CRON", "0 6 * * *"),
		MonitorWorkers:         getEnvInt("MONITOR_WORKERS", 4),
		MonitorFetchTimeoutSec: getEnvInt("MONITOR_FETCH_TIMEOUT_SECONDS", 45),
		MonitorCycleTimeoutMin: getEnvInt("MONITOR_CYCLE_TIMEOUT_MINUTES", 15),
		BaselinePriority:       getEnvInt("BASELINE_PRIORITY", 0),

		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@caseradar.org"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Case Radar"),
		EmailTestMode: getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:         getEnv("APP_URL", "http://localhost:8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
