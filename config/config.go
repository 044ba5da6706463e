// Package config provides configuration loading and management for the trip planner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Server ServerConfig `yaml:"server"`
	NATS   NATSConfig   `yaml:"nats"`
	Policy PolicyConfig `yaml:"policy"`
}

// ModelConfig configures how the planner reaches a model
type ModelConfig struct {
	// RegistryFile is a YAML or JSON model registry. Empty uses the built-in registry.
	RegistryFile string `yaml:"registry_file"`
	// Capability is the registry capability used for itinerary calls
	Capability string `yaml:"capability"`
	// Temperature controls randomness (0.0-2.0)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens limits response length (0 = endpoint default)
	MaxTokens int `yaml:"max_tokens"`
	// MaxAttempts is the per-endpoint attempt count. 1 disables retry.
	MaxAttempts int `yaml:"max_attempts"`
	// Timeout bounds a single HTTP call to a model endpoint
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP transport
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080")
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NATSConfig configures the optional NATS transport
type NATSConfig struct {
	// URL is the NATS server URL (empty = NATS disabled)
	URL string `yaml:"url"`
	// PlanSubject is the request/reply subject for plan requests
	PlanSubject string `yaml:"plan_subject"`
	// CallSubject is the JetStream subject model call records are published to
	CallSubject string `yaml:"call_subject"`
	// CallStream is the JetStream stream that captures CallSubject
	CallStream string `yaml:"call_stream"`
}

// PolicyConfig overrides itinerary policy constants. Zero values keep the defaults.
type PolicyConfig struct {
	StopsPerDay         int     `yaml:"stops_per_day"`
	AccommodationPerDay float64 `yaml:"accommodation_per_day"`
	MealsPerDay         float64 `yaml:"meals_per_day"`
	CoordinateTolerance float64 `yaml:"coordinate_tolerance"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Capability:  "itinerary",
			Temperature: 0.7,
			MaxTokens:   4096,
			MaxAttempts: 1,
			Timeout:     3 * time.Minute,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			PlanSubject: "tripplanner.plan",
			CallSubject: "tripplanner.llm.calls",
			CallStream:  "TRIPPLANNER_LLM",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Capability == "" {
		return fmt.Errorf("model.capability is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2")
	}
	if c.Model.MaxAttempts < 1 {
		return fmt.Errorf("model.max_attempts must be at least 1")
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("model.max_tokens must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.NATS.URL != "" && c.NATS.PlanSubject == "" {
		return fmt.Errorf("nats.plan_subject is required when nats.url is set")
	}
	if c.Policy.StopsPerDay < 0 {
		return fmt.Errorf("policy.stops_per_day must not be negative")
	}
	if c.Policy.AccommodationPerDay < 0 || c.Policy.MealsPerDay < 0 {
		return fmt.Errorf("policy costs must not be negative")
	}
	if c.Policy.CoordinateTolerance < 0 {
		return fmt.Errorf("policy.coordinate_tolerance must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. ${VAR:-default}
// references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.RegistryFile != "" {
		c.Model.RegistryFile = other.Model.RegistryFile
	}
	if other.Model.Capability != "" {
		c.Model.Capability = other.Model.Capability
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.MaxTokens != 0 {
		c.Model.MaxTokens = other.Model.MaxTokens
	}
	if other.Model.MaxAttempts != 0 {
		c.Model.MaxAttempts = other.Model.MaxAttempts
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.PlanSubject != "" {
		c.NATS.PlanSubject = other.NATS.PlanSubject
	}
	if other.NATS.CallSubject != "" {
		c.NATS.CallSubject = other.NATS.CallSubject
	}
	if other.NATS.CallStream != "" {
		c.NATS.CallStream = other.NATS.CallStream
	}

	// Policy
	if other.Policy.StopsPerDay != 0 {
		c.Policy.StopsPerDay = other.Policy.StopsPerDay
	}
	if other.Policy.AccommodationPerDay != 0 {
		c.Policy.AccommodationPerDay = other.Policy.AccommodationPerDay
	}
	if other.Policy.MealsPerDay != 0 {
		c.Policy.MealsPerDay = other.Policy.MealsPerDay
	}
	if other.Policy.CoordinateTolerance != 0 {
		c.Policy.CoordinateTolerance = other.Policy.CoordinateTolerance
	}
}
