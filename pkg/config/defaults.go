// Package config provides centralized default values for PulseDesk
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Auth Configuration
	JWTSecret     string
	AdminPassword string // bcrypt hash preferred, plaintext tolerated for testing
	TokenLifetime time.Duration

	// Ticketing Source
	TicketAPIURL     string
	TicketAPIToken   string
	TicketMaxResults int

	// CRM Source
	CrmAPIURL   string
	CrmAPIToken string

	// Usage Source
	UsageFeedPath      string
	UsageFeedDelimiter string

	// Analysis Configuration
	SourceFetchTimeout  time.Duration
	ActivityWindowMonth int

	// Persistence
	RunHistoryDBPath string
	RunHistoryLimit  int

	// Digest Email
	DigestFromEmail string
	DigestFromName  string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Auth Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	TokenLifetime = getEnvDuration("TOKEN_LIFETIME", 24*time.Hour)

	// Ticketing Source
	TicketAPIURL = getEnvString("TICKET_API_URL", "http://localhost:9001")
	TicketAPIToken = getEnvString("TICKET_API_TOKEN", "")
	TicketMaxResults = getEnvInt("TICKET_MAX_RESULTS", 1000)

	// CRM Source
	CrmAPIURL = getEnvString("CRM_API_URL", "http://localhost:9002")
	CrmAPIToken = getEnvString("CRM_API_TOKEN", "")

	// Usage Source
	UsageFeedPath = getEnvString("USAGE_FEED_PATH", "data/usage_events.csv")
	UsageFeedDelimiter = getEnvString("USAGE_FEED_DELIMITER", ",")

	// Analysis Configuration
	SourceFetchTimeout = getEnvDuration("SOURCE_FETCH_TIMEOUT", 30*time.Second)
	ActivityWindowMonth = getEnvInt("ACTIVITY_WINDOW_MONTHS", 6)

	// Persistence
	RunHistoryDBPath = getEnvString("RUN_HISTORY_DB_PATH", "data/runs.db")
	RunHistoryLimit = getEnvInt("RUN_HISTORY_LIMIT", 50)

	// Digest Email
	DigestFromEmail = getEnvString("DIGEST_EMAIL_FROM", "noreply@pulsedesk.io")
	DigestFromName = getEnvString("DIGEST_EMAIL_FROM_NAME", "PulseDesk")
}
