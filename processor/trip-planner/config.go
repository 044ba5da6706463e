package tripplanner

import (
	"fmt"

	"github.com/c360studio/tripplanner/config"
	"github.com/c360studio/tripplanner/itinerary"
)

// Config holds configuration for the trip planner processor.
type Config struct {
	// Capability is the model capability itinerary calls resolve through.
	Capability string `json:"capability"`

	// Temperature for the itinerary call.
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the model response. 0 uses the endpoint default.
	MaxTokens int `json:"max_tokens"`

	// Policy carries the planning constants.
	Policy itinerary.Policy `json:"policy"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Capability:  "itinerary",
		Temperature: 0.7,
		MaxTokens:   4096,
		Policy:      itinerary.DefaultPolicy(),
	}
}

// ConfigFrom derives processor configuration from the service file.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Model.Capability != "" {
		c.Capability = cfg.Model.Capability
	}
	c.Temperature = cfg.Model.Temperature
	c.MaxTokens = cfg.Model.MaxTokens
	c.Policy = c.Policy.Override(itinerary.Policy{
		StopsPerDay:         cfg.Policy.StopsPerDay,
		AccommodationPerDay: cfg.Policy.AccommodationPerDay,
		MealsPerDay:         cfg.Policy.MealsPerDay,
		CoordinateTolerance: cfg.Policy.CoordinateTolerance,
	})
	return c
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Capability == "" {
		return fmt.Errorf("capability is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	if c.Policy.StopsPerDay <= 0 {
		return fmt.Errorf("policy.stops_per_day must be positive")
	}
	if c.Policy.CoordinateTolerance <= 0 {
		return fmt.Errorf("policy.coordinate_tolerance must be positive")
	}
	return nil
}
