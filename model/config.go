package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryConfig is the serialized registry. It is read from YAML or JSON
// (YAML is a superset), either bare or under a top-level "model_registry" key.
type RegistryConfig struct {
	Capabilities map[string]*CapabilityConfig `json:"capabilities" yaml:"capabilities"`
	Endpoints    map[string]*EndpointConfig   `json:"endpoints" yaml:"endpoints"`
	Defaults     *DefaultsConfig              `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// LoadFromFile loads a registry from a YAML or JSON file.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a registry document.
func LoadFromBytes(data []byte) (*Registry, error) {
	var wrapped struct {
		ModelRegistry *RegistryConfig `yaml:"model_registry"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse registry config: %w", err)
	}
	if wrapped.ModelRegistry != nil {
		return FromConfig(wrapped.ModelRegistry)
	}

	var cfg RegistryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse registry config: %w", err)
	}
	return FromConfig(&cfg)
}

// FromConfig builds a registry and checks that every referenced endpoint exists.
func FromConfig(cfg *RegistryConfig) (*Registry, error) {
	if len(cfg.Capabilities) == 0 {
		return nil, fmt.Errorf("registry config has no capabilities")
	}

	caps := make(map[Capability]*CapabilityConfig, len(cfg.Capabilities))
	for name, c := range cfg.Capabilities {
		if c == nil {
			return nil, fmt.Errorf("capability %q is empty", name)
		}
		for _, ep := range append(append([]string{}, c.Preferred...), c.Fallback...) {
			if _, ok := cfg.Endpoints[ep]; !ok {
				return nil, fmt.Errorf("capability %q references unknown endpoint %q", name, ep)
			}
		}
		caps[Capability(name)] = c
	}

	r := NewRegistry(caps, cfg.Endpoints)
	if cfg.Defaults != nil && cfg.Defaults.Model != "" {
		r.SetDefault(cfg.Defaults.Model)
	}
	return r, nil
}

// ToConfig converts the registry to its serialized form.
func (r *Registry) ToConfig() *RegistryConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make(map[string]*CapabilityConfig, len(r.capabilities))
	for k, v := range r.capabilities {
		caps[string(k)] = v
	}
	return &RegistryConfig{
		Capabilities: caps,
		Endpoints:    r.endpoints,
		Defaults:     r.defaults,
	}
}

// MergeFromConfig overlays cfg onto the registry. Entries in cfg win.
func (r *Registry) MergeFromConfig(cfg *RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range cfg.Capabilities {
		r.capabilities[Capability(k)] = v
	}
	for k, v := range cfg.Endpoints {
		r.endpoints[k] = v
	}
	if cfg.Defaults != nil {
		r.defaults = cfg.Defaults
	}
}
