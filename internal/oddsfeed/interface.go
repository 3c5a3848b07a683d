// Package oddsfeed fetches bookmaker odds from external REST providers and
// normalizes them into a provider-independent shape.
package oddsfeed

import (
	"context"
	"time"
)

// Provider defines the interface for fetching odds from an external provider
type Provider interface {
	// FetchOdds retrieves current odds matching the query
	FetchOdds(ctx context.Context, query OddsQuery) ([]EventOdds, error)

	// Name returns the name of the odds provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// OddsQuery describes which odds to fetch from a provider
type OddsQuery struct {
	EventID    string   // provider event ID, empty to fetch all current events
	Sport      string   // sport filter if the provider supports it
	Bookmakers []string // bookmakers to include, empty for provider default
}

// EventOdds represents normalized odds for a single event from any provider
type EventOdds struct {
	SourceID  string       `json:"source_id"`  // provider's unique event ID
	Source    string       `json:"source"`     // provider name
	EventName string       `json:"event_name"` // human-readable event name
	StartTime time.Time    `json:"start_time"` // event start time UTC, zero if unknown
	Status    string       `json:"status"`     // provider event status
	Markets   []MarketOdds `json:"markets"`    // market odds
	FetchedAt time.Time    `json:"fetched_at"` // when the odds were fetched
}

// MarketOdds represents a single betting market within an event
type MarketOdds struct {
	MarketID   string        `json:"market_id"`   // provider's market ID
	MarketName string        `json:"market_name"` // market display name
	OddsType   string        `json:"odds_type"`   // provider odds classification
	Outcomes   []OutcomeOdds `json:"outcomes"`    // priced outcomes
}

// OutcomeOdds represents a priced outcome with per-bookmaker prices
type OutcomeOdds struct {
	Name      string            `json:"name"`       // outcome display name
	BestPrice float64           `json:"best_price"` // best available decimal price
	Handicap  *float64          `json:"handicap"`   // handicap line if any
	Prices    map[string]float64 `json:"prices"`    // bookmaker name -> decimal price
	Links     map[string]string  `json:"links"`     // bookmaker name -> event path
}

// ProviderError represents errors from odds provider operations
type ProviderError struct {
	Source  string // provider name
	Code    string // error code (e.g. "rate_limit_exceeded")
	Message string // error message
	Err     error  // underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "provider_disabled"
)

// NewProviderError creates a new provider error
func NewProviderError(source, code, message string, err error) ProviderError {
	return ProviderError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
