// Package config provides configuration for hrdesk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// Config holds the hrdesk configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Vendor gateway
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Run polling
	RunPollInterval time.Duration
	RunTimeout      time.Duration
	BatchTimeout    time.Duration

	// Default instructions passed with every run
	RunInstructions string

	// Time zone used when rendering index file timestamps
	DisplayTimeZone string

	// Upload limits
	MaxUploadBytes int64

	// Customer table
	CustomersFile string
	Customers     map[string]domain.Customer
}

// Load loads configuration from environment variables and the customer table.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:     getEnv("DATABASE_URL", "file:hrdesk.db?cache=shared&mode=rwc"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		RunPollInterval: time.Duration(getEnvInt("RUN_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		RunTimeout:      time.Duration(getEnvInt("RUN_TIMEOUT_MS", 120000)) * time.Millisecond,
		BatchTimeout:    time.Duration(getEnvInt("BATCH_TIMEOUT_MS", 300000)) * time.Millisecond,
		RunInstructions: getEnv("RUN_INSTRUCTIONS", "Please address HR issues or questions of the user."),
		DisplayTimeZone: getEnv("DISPLAY_TIMEZONE", "Europe/Berlin"),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		CustomersFile:   getEnv("CUSTOMERS_FILE", "customers.yaml"),
	}

	customers, err := loadCustomers(cfg.CustomersFile)
	if err != nil {
		return nil, err
	}
	cfg.Customers = customers

	return cfg, nil
}

// Customer looks up the static customer table.
func (c *Config) Customer(id string) (domain.Customer, bool) {
	cust, ok := c.Customers[id]
	return cust, ok
}

type customersFile struct {
	Customers []domain.Customer `yaml:"customers"`
}

func loadCustomers(path string) (map[string]domain.Customer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No table configured; the service still serves health and the page.
			return map[string]domain.Customer{}, nil
		}
		return nil, fmt.Errorf("failed to read customers file: %w", err)
	}

	var parsed customersFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse customers file: %w", err)
	}

	customers := make(map[string]domain.Customer, len(parsed.Customers))
	for _, cust := range parsed.Customers {
		if cust.ID == "" || cust.AssistantID == "" {
			return nil, fmt.Errorf("customer entry missing id or assistant_id: %+v", cust)
		}
		customers[cust.ID] = cust
	}
	return customers, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
