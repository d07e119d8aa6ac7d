package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	SourceAirtable = "airtable"
	SourceMirror   = "mirror"
)

type Config struct {
	DBPath    string
	OutputDir string
	Source    string

	AirtableAPIBaseURL   string
	AirtableBaseID       string
	AirtableTableName    string
	AirtableToken        string
	AirtableRateLimitRPS int
	AirtableTimeoutMs    int

	HTTPAddr             string
	HTTPAllowedOrigin    string
	HTTPShutdownTimeoutS int

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "orgdir.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		Source:    strings.ToLower(strings.TrimSpace(getEnv("SOURCE", SourceAirtable))),

		// Base, table and token have no defaults; RequireAirtable rejects them empty.
		AirtableAPIBaseURL:   getEnv("AIRTABLE_API_BASE_URL", "https://api.airtable.com/v0"),
		AirtableBaseID:       getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTableName:    getEnv("AIRTABLE_TABLE_NAME", ""),
		AirtableToken:        getEnv("AIRTABLE_PAT", ""),
		AirtableRateLimitRPS: getEnvInt("AIRTABLE_RATE_LIMIT_RPS", 5),
		AirtableTimeoutMs:    getEnvInt("AIRTABLE_TIMEOUT_MS", 30000),

		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		HTTPAllowedOrigin:    getEnv("HTTP_ALLOWED_ORIGIN", "*"),
		HTTPShutdownTimeoutS: getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// RequireAirtable checks every setting the Airtable client needs.
func (c Config) RequireAirtable() error {
	if err := c.Require("AIRTABLE_BASE_ID", c.AirtableBaseID); err != nil {
		return err
	}
	if err := c.Require("AIRTABLE_TABLE_NAME", c.AirtableTableName); err != nil {
		return err
	}
	return c.Require("AIRTABLE_PAT", c.AirtableToken)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
