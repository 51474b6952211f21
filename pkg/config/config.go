// Package config reads service settings from an optional YAML file and
// then from the environment. Environment values win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nazeru/storefront-orders-go/pkg/query"
)

// FileEnv names the variable holding the YAML file path.
const FileEnv = "STOREFRONT_CONFIG"

type Config struct {
	Port           string        `yaml:"port"`
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PageSize       int           `yaml:"page_size"`
	DatabaseURL    string        `yaml:"database_url"`
	Kafka          Kafka         `yaml:"kafka"`
}

type Kafka struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

func Defaults() Config {
	return Config{
		Port:           "8080",
		APIBaseURL:     "http://localhost:8000/api",
		RequestTimeout: 2500 * time.Millisecond,
		PageSize:       query.DefaultPageSize,
		Kafka: Kafka{
			Topic:   "storefront.orders",
			GroupID: "notification-service",
		},
	}
}

// Load applies defaults, then the file named by STOREFRONT_CONFIG (if set),
// then environment overrides.
func Load() (Config, error) {
	c := Defaults()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := c.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Parse overlays YAML data on top of c.
func (c *Config) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return c.Parse(data)
}

func (c *Config) applyEnv() error {
	c.Port = getenv("PORT", c.Port)
	c.APIBaseURL = getenv("STORE_API_URL", c.APIBaseURL)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.Kafka.Brokers = getenv("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getenv("KAFKA_TOPIC", c.Kafka.Topic)
	c.Kafka.GroupID = getenv("KAFKA_GROUP_ID", c.Kafka.GroupID)

	if v := getenv("REQUEST_TIMEOUT_MS", ""); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT_MS: %w", err)
		}
		c.RequestTimeout = time.Duration(ms) * time.Millisecond
	}
	if v := getenv("PAGE_SIZE", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIBaseURL) == "" {
		errs = append(errs, errors.New("api_base_url is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be > 0"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("page_size must be > 0"))
	}
	return errors.Join(errs...)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
