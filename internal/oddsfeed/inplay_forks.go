package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const inplayForksSource = "inplay_forks"

// InplayForksClient implements Provider for the bet365 in-play forks endpoint.
// The provider returns paired bookmaker records: two prices on opposite
// outcomes of the same event.
type InplayForksClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// inplayForkRecord is one paired-odds record from the provider
type inplayForkRecord struct {
	EventName  string      `json:"bK1_EventName"`
	Bookmaker1 string      `json:"bookmaker1"`
	BetName1   string      `json:"bK1_BetName"`
	BetCoef1   json.Number `json:"bK1_BetCoef"`
	Bookmaker2 string      `json:"bookmaker2"`
	BetName2   string      `json:"bK2_BetName"`
	BetCoef2   json.Number `json:"bK2_BetCoef"`
}

// NewInplayForksClient creates a new bet365 in-play forks client
func NewInplayForksClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *InplayForksClient {
	if baseURL == "" {
		baseURL = "https://bet365-api-inplay.p.rapidapi.com"
	}
	return &InplayForksClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves current in-play fork records and normalizes them.
// The endpoint has no event filter, so EventID in the query is ignored.
func (c *InplayForksClient) FetchOdds(ctx context.Context, query OddsQuery) ([]EventOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(inplayForksSource, ErrCodeDisabled, "provider is disabled", nil)
	}
	if c.apiKey == "" {
		return nil, NewProviderError(inplayForksSource, ErrCodeAuthenticationFailed, "API key is missing", nil)
	}

	reqURL := c.baseURL + "/bet365/get_betfair_forks"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewProviderError(inplayForksSource, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", req.URL.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(inplayForksSource, ErrCodeNetworkError, "failed to fetch forks", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewProviderError(inplayForksSource, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(inplayForksSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(inplayForksSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var records []inplayForkRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, NewProviderError(inplayForksSource, ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertRecords(records), nil
}

// Name returns the provider name
func (c *InplayForksClient) Name() string {
	return inplayForksSource
}

// IsEnabled returns whether this provider is enabled
func (c *InplayForksClient) IsEnabled() bool {
	return c.enabled
}

// convertRecords groups fork records by event name and turns each pair of
// priced bets into market outcomes
func (c *InplayForksClient) convertRecords(records []inplayForkRecord) []EventOdds {
	now := time.Now().UTC()
	byEvent := make(map[string]*EventOdds)
	order := make([]string, 0)

	for i, rec := range records {
		if rec.EventName == "" {
			continue
		}

		event, ok := byEvent[rec.EventName]
		if !ok {
			event = &EventOdds{
				SourceID:  fmt.Sprintf("%s-%d", slugify(rec.EventName), i),
				Source:    inplayForksSource,
				EventName: rec.EventName,
				Status:    "in_play",
				FetchedAt: now,
			}
			byEvent[rec.EventName] = event
			order = append(order, rec.EventName)
		}

		market := MarketOdds{
			MarketID:   fmt.Sprintf("fork-%d", i),
			MarketName: rec.BetName1 + " / " + rec.BetName2,
			OddsType:   "fork",
		}

		for _, side := range []struct {
			bookmaker string
			name      string
			coef      json.Number
		}{
			{rec.Bookmaker1, rec.BetName1, rec.BetCoef1},
			{rec.Bookmaker2, rec.BetName2, rec.BetCoef2},
		} {
			price, err := parseCoef(side.coef)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"event":     rec.EventName,
					"bookmaker": side.bookmaker,
				}).Debug("Skipping unparseable coefficient")
				continue
			}

			market.Outcomes = append(market.Outcomes, OutcomeOdds{
				Name:      side.name,
				BestPrice: price,
				Prices:    map[string]float64{side.bookmaker: price},
			})
		}

		if len(market.Outcomes) > 0 {
			event.Markets = append(event.Markets, market)
		}
	}

	events := make([]EventOdds, 0, len(order))
	for _, name := range order {
		events = append(events, *byEvent[name])
	}

	return events
}

// parseCoef converts a provider coefficient to a decimal price
func parseCoef(n json.Number) (float64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("empty coefficient")
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coefficient %q: %w", s, err)
	}
	if price <= 1 {
		return 0, fmt.Errorf("coefficient %v out of range", price)
	}
	return price, nil
}

// slugify lowercases an event name for use in a synthetic source ID
func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, s)
	return strings.Trim(s, "-")
}
