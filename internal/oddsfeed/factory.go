package oddsfeed

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/edge-finder/internal/config"
)

// Factory creates Provider implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new provider factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewProvider creates a single Provider from its configuration
func (f *Factory) NewProvider(cfg config.ProviderConfig, httpClient *RateLimitedHTTPClient) (Provider, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch cfg.Name {
	case rapidOddsSource:
		return NewRapidOddsClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case inplayForksSource:
		return NewInplayForksClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown odds provider: %s", cfg.Name)
	}
}

// NewProviders creates all enabled providers from configuration. Each
// provider gets its own HTTP client so rate limits and circuit breakers
// do not interfere across providers.
func (f *Factory) NewProviders(cfgs []config.ProviderConfig) (map[string]Provider, error) {
	providers := make(map[string]Provider)

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			f.logger.WithField("provider", cfg.Name).Debug("Skipping disabled odds provider")
			continue
		}

		httpCfg := DefaultHTTPClientConfig()
		if cfg.RateLimit > 0 {
			httpCfg.RateLimit = cfg.RateLimit
		}
		if cfg.MaxRetries > 0 {
			httpCfg.MaxRetries = cfg.MaxRetries
		}
		httpCfg.Timeout = 30 * time.Second

		provider, err := f.NewProvider(cfg, NewRateLimitedHTTPClient(httpCfg, f.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create odds provider %s: %w", cfg.Name, err)
		}

		providers[cfg.Name] = provider
		f.logger.WithField("provider", cfg.Name).Info("Created odds provider")
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no enabled odds providers configured")
	}

	return providers, nil
}
