package handlers_test

import (
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var valuationDay = time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)

func decimalEq(want string) any {
	w := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(w) })
}

func (suite *HandlersTestSuite) TestConvert_Success() {
	quote := &domain.RateQuote{
		ProviderName:     domain.ProviderCurrencyBeacon,
		FromCurrencyCode: "EUR",
		ToCurrencyCode:   "USD",
		ValuationDate:    valuationDay,
		Rate:             decimal.RequireFromString("1.087654"),
		Origin:           domain.RateOriginStore,
	}
	suite.rateSvc.On("ConvertAmount", mock.Anything, decimalEq("250"), "EUR", "USD", valuationDay).
		Return(decimal.RequireFromString("271.9135"), quote, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/currency-converter?from_currency=eur&to_currency=usd&valuation_date=2024-03-14&amount=250", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConverterResponse
	suite.decode(w, &resp)
	suite.Equal(dto.StatusOK, resp.Status)
	suite.Equal("EUR", resp.FromCurrency)
	suite.Equal("USD", resp.ToCurrency)
	suite.Equal("2024-03-14", resp.ValuationDate)
	suite.Equal(string(domain.RateOriginStore), resp.Origin)
	suite.Require().NotNil(resp.RateValue)
	suite.True(resp.RateValue.Equal(decimal.RequireFromString("1.087654")))
	suite.Require().NotNil(resp.ConvertedAmount)
	suite.Equal("271.9135", resp.ConvertedAmount.String())
}

func (suite *HandlersTestSuite) TestConvert_AmountDefaultsToOne() {
	quote := &domain.RateQuote{
		FromCurrencyCode: "GBP",
		ToCurrencyCode:   "GBP",
		ValuationDate:    valuationDay,
		Rate:             decimal.NewFromInt(1),
		Origin:           domain.RateOriginIdentity,
	}
	suite.rateSvc.On("ConvertAmount", mock.Anything, decimalEq("1"), "GBP", "GBP", valuationDay).
		Return(decimal.NewFromInt(1), quote, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/currency-converter?from_currency=GBP&to_currency=GBP&valuation_date=2024-03-14", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConverterResponse
	suite.decode(w, &resp)
	suite.Equal(string(domain.RateOriginIdentity), resp.Origin)
}

func (suite *HandlersTestSuite) TestConvert_ValidationMessages() {
	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"missing source", "to_currency=USD&valuation_date=2024-03-14", "The currency code source must be specified !"},
		{"blank source", "from_currency=%20&to_currency=USD&valuation_date=2024-03-14", "The currency code source must be specified !"},
		{"missing destination", "from_currency=EUR&valuation_date=2024-03-14", "The currency code destination must be specified !"},
		{"missing date", "from_currency=EUR&to_currency=USD", "The valuation date must be specified !"},
		{"malformed date", "from_currency=EUR&to_currency=USD&valuation_date=14/03/2024", "The valuation date is incorrect !"},
		{"impossible date", "from_currency=EUR&to_currency=USD&valuation_date=2024-02-30", "The valuation date is incorrect !"},
		{"negative amount", "from_currency=EUR&to_currency=USD&valuation_date=2024-03-14&amount=-5", "The amount must be a positive number !"},
		{"zero amount", "from_currency=EUR&to_currency=USD&valuation_date=2024-03-14&amount=0", "The amount must be a positive number !"},
		{"text amount", "from_currency=EUR&to_currency=USD&valuation_date=2024-03-14&amount=ten", "The amount must be a positive number !"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.do(http.MethodGet, "/api/v1/currency-converter?"+tc.query, nil, "")

			suite.Equal(http.StatusBadRequest, w.Code)
			var resp dto.ConverterResponse
			suite.decode(w, &resp)
			suite.Equal(dto.StatusKO, resp.Status)
			suite.Equal(tc.want, resp.Message)
		})
	}
	suite.rateSvc.AssertNotCalled(suite.T(), "ConvertAmount")
}

func (suite *HandlersTestSuite) TestConvert_NoData() {
	suite.rateSvc.On("ConvertAmount", mock.Anything, mock.Anything, "EUR", "CHF", valuationDay).
		Return(nil, nil, apperrors.ErrRemoteDataMissing).Once()

	w := suite.do(http.MethodGet, "/api/v1/currency-converter?from_currency=EUR&to_currency=CHF&valuation_date=2024-03-14", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConverterResponse
	suite.decode(w, &resp)
	suite.Equal(dto.StatusOK, resp.Status)
	suite.Equal("No rate available for EUR -> CHF at 2024-03-14.", resp.Message)
	suite.Nil(resp.RateValue)
}

func (suite *HandlersTestSuite) TestConvert_Failures() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "future date",
			err:        apperrors.NewRateError(apperrors.ErrFutureDate, "A rate value cannot be read in the future"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "A rate value cannot be read in the future",
		},
		{
			name:       "unknown currency",
			err:        apperrors.NewRateError(apperrors.ErrUnknownCurrency, "The specified source currency code XXX is not available at the moment."),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "The specified source currency code XXX is not available at the moment.",
		},
		{
			name:       "no provider",
			err:        apperrors.NewRateError(apperrors.ErrNoProviderAvailable, "No provider available at the moment."),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "No provider available at the moment.",
		},
		{
			name:       "breaker open",
			err:        apperrors.NewRateError(apperrors.ErrProviderRejected, "provider currencybeacon is temporarily unavailable"),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "provider currencybeacon is temporarily unavailable",
		},
		{
			name:       "timeout",
			err:        apperrors.NewRateError(apperrors.ErrTimeout, "provider currencybeacon did not answer in time"),
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "provider currencybeacon did not answer in time",
		},
		{
			name:       "unexpected",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to convert amount",
		},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.rateSvc.On("ConvertAmount", mock.Anything, mock.Anything, "EUR", "XXX", valuationDay).
				Return(nil, nil, tc.err).Once()

			w := suite.do(http.MethodGet, "/api/v1/currency-converter?from_currency=EUR&to_currency=XXX&valuation_date=2024-03-14", nil, "")

			suite.Equal(tc.wantStatus, w.Code)
			var resp dto.ConverterResponse
			suite.decode(w, &resp)
			suite.Equal(dto.StatusKO, resp.Status)
			suite.Equal(tc.wantMsg, resp.Message)
		})
	}
}

func (suite *HandlersTestSuite) TestImportRange_Success() {
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	summary := &domain.ImportSummary{
		From:           from,
		To:             to,
		Requested:      3,
		SkippedSources: []string{"EUR"},
		RatesFetched:   12,
		RatesStored:    11,
	}
	suite.rateSvc.On("ImportRange", mock.Anything, []string{"EUR", "USD", "CHF"}, from, to).
		Return(summary, nil).Once()

	body := dto.ImportRequest{Currencies: []string{"EUR", "USD", "CHF"}, FromDate: "2024-03-01", ToDate: "2024-03-03"}
	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/import", body, suite.adminToken())

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ImportResponse
	suite.decode(w, &resp)
	suite.Equal(dto.StatusOK, resp.Status)
	suite.Equal("2024-03-01", resp.FromDate)
	suite.Equal("2024-03-03", resp.ToDate)
	suite.Equal([]string{"EUR"}, resp.SkippedSources)
	suite.Equal(12, resp.RatesFetched)
	suite.Equal(11, resp.RatesStored)
}

func (suite *HandlersTestSuite) TestImportRange_RequiresToken() {
	body := dto.ImportRequest{Currencies: []string{"EUR", "USD"}, FromDate: "2024-03-01", ToDate: "2024-03-03"}

	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/import", body, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.rateSvc.AssertNotCalled(suite.T(), "ImportRange")
}

func (suite *HandlersTestSuite) TestImportRange_BadRequests() {
	cases := []struct {
		name string
		body dto.ImportRequest
	}{
		{"single currency", dto.ImportRequest{Currencies: []string{"EUR"}, FromDate: "2024-03-01", ToDate: "2024-03-03"}},
		{"lower case code", dto.ImportRequest{Currencies: []string{"eur", "USD"}, FromDate: "2024-03-01", ToDate: "2024-03-03"}},
		{"bad from date", dto.ImportRequest{Currencies: []string{"EUR", "USD"}, FromDate: "March 1", ToDate: "2024-03-03"}},
		{"bad to date", dto.ImportRequest{Currencies: []string{"EUR", "USD"}, FromDate: "2024-03-01", ToDate: "2024-13-01"}},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/exchange-rates/import", tc.body, suite.adminToken())
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.rateSvc.AssertNotCalled(suite.T(), "ImportRange")
}

func (suite *HandlersTestSuite) TestImportRange_ServiceError() {
	suite.rateSvc.On("ImportRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewRateError(apperrors.ErrProviderTransport, "provider currencybeacon could not be reached")).Once()

	body := dto.ImportRequest{Currencies: []string{"EUR", "USD"}, FromDate: "2024-03-01", ToDate: "2024-03-03"}
	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/import", body, suite.adminToken())

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Equal("provider currencybeacon could not be reached", resp["error"])
}
