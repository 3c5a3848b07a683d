package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const rapidOddsSource = "rapid_odds"

// defaultBookmakers is requested when the query does not name any
var defaultBookmakers = []string{"bet365", "pinnacle", "draftkings", "betsson", "ladbrokes"}

// RapidOddsClient implements Provider for the odds-api1 RapidAPI endpoint
type RapidOddsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// rapidOddsResponse is the provider's nested event payload
type rapidOddsResponse struct {
	EventID     string                     `json:"eventId"`
	Date        string                     `json:"date"`
	EventStatus string                     `json:"eventStatus"`
	Markets     map[string]rapidOddsMarket `json:"markets"`
}

type rapidOddsMarket struct {
	MarketName      string                      `json:"marketName"`
	MarketNameShort string                      `json:"marketNameShort"`
	OddsType        string                      `json:"oddsType"`
	Handicap        *float64                    `json:"handicap"`
	Outcomes        map[string]rapidOddsOutcome `json:"outcomes"`
}

type rapidOddsOutcome struct {
	OutcomeName string                     `json:"outcomeName"`
	Bookmakers  map[string]json.RawMessage `json:"bookmakers"`
}

type rapidBookmakerPrice struct {
	Price     float64 `json:"price"`
	EventPath string  `json:"eventPath"`
}

// NewRapidOddsClient creates a new odds-api1 client
func NewRapidOddsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *RapidOddsClient {
	if baseURL == "" {
		baseURL = "https://odds-api1.p.rapidapi.com"
	}
	return &RapidOddsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchOdds retrieves decimal odds for the queried event
func (c *RapidOddsClient) FetchOdds(ctx context.Context, query OddsQuery) ([]EventOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(rapidOddsSource, ErrCodeDisabled, "provider is disabled", nil)
	}

	bookmakers := query.Bookmakers
	if len(bookmakers) == 0 {
		bookmakers = defaultBookmakers
	}

	params := url.Values{}
	if query.EventID != "" {
		params.Set("eventId", query.EventID)
	}
	params.Set("bookmakers", strings.Join(bookmakers, ","))
	params.Set("oddsFormat", "decimal")
	params.Set("raw", "false")

	reqURL := fmt.Sprintf("%s/odds?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewProviderError(rapidOddsSource, ErrCodeNetworkError, "failed to create request", err)
	}

	host := req.URL.Host
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(rapidOddsSource, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewProviderError(rapidOddsSource, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(rapidOddsSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(rapidOddsSource, ErrCodeNotFound, "event not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(rapidOddsSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload rapidOddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewProviderError(rapidOddsSource, ErrCodeInvalidData, "failed to parse response", err)
	}

	event, err := c.convertEvent(&payload)
	if err != nil {
		return nil, NewProviderError(rapidOddsSource, ErrCodeInvalidData, "failed to convert event", err)
	}

	return []EventOdds{*event}, nil
}

// Name returns the provider name
func (c *RapidOddsClient) Name() string {
	return rapidOddsSource
}

// IsEnabled returns whether this provider is enabled
func (c *RapidOddsClient) IsEnabled() bool {
	return c.enabled
}

// convertEvent normalizes the provider payload into EventOdds
func (c *RapidOddsClient) convertEvent(payload *rapidOddsResponse) (*EventOdds, error) {
	if payload.EventID == "" {
		return nil, fmt.Errorf("response missing event ID")
	}

	startTime, err := time.Parse(time.RFC3339, payload.Date)
	if err != nil {
		startTime = time.Time{}
	}

	event := &EventOdds{
		SourceID:  payload.EventID,
		Source:    rapidOddsSource,
		StartTime: startTime,
		Status:    payload.EventStatus,
		Markets:   make([]MarketOdds, 0, len(payload.Markets)),
		FetchedAt: time.Now().UTC(),
	}

	for marketID, marketData := range payload.Markets {
		market := MarketOdds{
			MarketID:   marketID,
			MarketName: marketData.MarketName,
			OddsType:   marketData.OddsType,
			Outcomes:   make([]OutcomeOdds, 0, len(marketData.Outcomes)),
		}

		for _, outcomeData := range marketData.Outcomes {
			outcome := OutcomeOdds{
				Name:     outcomeData.OutcomeName,
				Handicap: marketData.Handicap,
				Prices:   make(map[string]float64),
				Links:    make(map[string]string),
			}

			for bookmaker, raw := range outcomeData.Bookmakers {
				var price rapidBookmakerPrice
				if err := json.Unmarshal(raw, &price); err != nil {
					c.logger.WithFields(logrus.Fields{
						"bookmaker": bookmaker,
						"outcome":   outcomeData.OutcomeName,
					}).Debug("Skipping unparseable bookmaker price")
					continue
				}

				if bookmaker == "bestPrice" {
					outcome.BestPrice = price.Price
					continue
				}

				outcome.Prices[bookmaker] = price.Price
				if price.EventPath != "" {
					outcome.Links[bookmaker] = price.EventPath
				}
			}

			// Derive best price when the provider omits the summary entry
			if outcome.BestPrice == 0 {
				for _, p := range outcome.Prices {
					if p > outcome.BestPrice {
						outcome.BestPrice = p
					}
				}
			}

			market.Outcomes = append(market.Outcomes, outcome)
		}

		event.Markets = append(event.Markets, market)
	}

	return event, nil
}
