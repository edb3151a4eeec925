package llm

import (
	"fmt"
	"sort"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/port"
)

// ProviderFactory is a function that creates an LLMClient from the LLM config.
type ProviderFactory func(cfg *config.LLMConfig) (port.LLMClient, error)

// registry of provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient creates an LLMClient from the config using the registered factory.
func NewClient(cfg *config.LLMConfig) (port.LLMClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, cfg.Provider)
	}
	return factory(cfg)
}
