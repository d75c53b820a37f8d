// Package currencybeacon adapts the CurrencyBeacon HTTP API to the RateProvider port.
package currencybeacon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client calls the spot, historical and timeseries endpoints.
type Client struct {
	apiKey        string
	spotURL       string
	historicalURL string
	timeseriesURL string
	httpClient    *http.Client
	now           func() time.Time
}

var _ providers.RateProvider = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock overrides the clock used to pick between spot and historical calls.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a client from the provider configuration.
func New(cfg config.CurrencyBeaconConfig, opts ...Option) *Client {
	c := &Client{
		apiKey:        cfg.APIKey,
		spotURL:       cfg.SpotURL,
		historicalURL: cfg.HistoricalURL,
		timeseriesURL: cfg.TimeseriesURL,
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return domain.ProviderCurrencyBeacon }

type envelope struct {
	Response json.RawMessage `json:"response"`
}

type spotPayload struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type historicalPayload struct {
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetch returns the rate for one pair on valuationDate.
func (c *Client) Fetch(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error) {
	var (
		rate decimal.Decimal
		err  error
	)
	if dates.IsToday(valuationDate, c.now()) {
		rate, err = c.fetchSpot(ctx, fromCode, toCode)
	} else {
		rate, err = c.fetchHistorical(ctx, fromCode, toCode, valuationDate)
	}
	if err != nil {
		return nil, err
	}
	rate = rate.Round(domain.RateScale)
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive rate %s for %s/%s", apperrors.ErrProviderResponse, rate, fromCode, toCode)
	}

	return &domain.RateQuote{
		ProviderName:     c.Name(),
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		ValuationDate:    dates.DateOnly(valuationDate),
		Rate:             rate,
		Origin:           domain.RateOriginProvider,
	}, nil
}

func (c *Client) fetchSpot(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	params := url.Values{
		"api_key": {c.apiKey},
		"from":    {fromCode},
		"to":      {toCode},
		"amount":  {"1"},
	}
	raw, err := c.get(ctx, c.spotURL, params)
	if err != nil {
		return decimal.Zero, err
	}
	if isEmpty(raw) {
		return decimal.Zero, fmt.Errorf("%w: %s -> %s today", apperrors.ErrRemoteDataMissing, fromCode, toCode)
	}

	var p spotPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding spot response: %v", apperrors.ErrProviderResponse, err)
	}
	return p.Value, nil
}

func (c *Client) fetchHistorical(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (decimal.Decimal, error) {
	params := url.Values{
		"api_key": {c.apiKey},
		"base":    {fromCode},
		"date":    {dates.Format(valuationDate)},
		"symbols": {toCode},
	}
	raw, err := c.get(ctx, c.historicalURL, params)
	if err != nil {
		return decimal.Zero, err
	}

	missing := fmt.Errorf("%w: %s -> %s at %s", apperrors.ErrRemoteDataMissing, fromCode, toCode, dates.Format(valuationDate))
	if isEmpty(raw) {
		return decimal.Zero, missing
	}

	var p historicalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding historical response: %v", apperrors.ErrProviderResponse, err)
	}
	rate, ok := p.Rates[toCode]
	if !ok {
		return decimal.Zero, missing
	}
	return rate, nil
}

// FetchSeries returns every (day, target) rate the timeseries endpoint knows.
// Days or targets absent from the answer are skipped.
func (c *Client) FetchSeries(ctx context.Context, fromCode string, toCodes []string, from, to time.Time) ([]domain.ExchangeRate, error) {
	if len(toCodes) == 0 {
		return nil, nil
	}
	params := url.Values{
		"api_key":    {c.apiKey},
		"base":       {fromCode},
		"start_date": {dates.Format(from)},
		"end_date":   {dates.Format(to)},
		"symbols":    {strings.Join(toCodes, ",")},
	}
	raw, err := c.get(ctx, c.timeseriesURL, params)
	if err != nil {
		return nil, err
	}
	if isEmpty(raw) {
		return nil, nil
	}

	var series map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("%w: decoding timeseries response: %v", apperrors.ErrProviderResponse, err)
	}

	now := c.now().UTC()
	var rates []domain.ExchangeRate
	for _, day := range dates.Range(from, to) {
		byTarget, ok := series[dates.Format(day)]
		if !ok {
			continue
		}
		for _, toCode := range toCodes {
			value, ok := byTarget[toCode]
			if !ok || !value.Round(domain.RateScale).IsPositive() {
				continue
			}
			q := domain.RateQuote{
				ProviderName:     c.Name(),
				FromCurrencyCode: fromCode,
				ToCurrencyCode:   toCode,
				ValuationDate:    day,
				Rate:             value,
			}
			rates = append(rates, q.ToExchangeRate(uuid.NewString(), now))
		}
	}
	return rates, nil
}

// get performs one GET and classifies failures. Network errors and 5xx answers
// are transport errors; 4xx answers and undecodable envelopes are response errors.
// Context errors are returned unwrapped.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q: %v", apperrors.ErrProviderResponse, endpoint, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: reading body: %v", apperrors.ErrProviderTransport, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrProviderTransport, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrProviderResponse, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding envelope: %v", apperrors.ErrProviderResponse, err)
	}
	return env.Response, nil
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}
