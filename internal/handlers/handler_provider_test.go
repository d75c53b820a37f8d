package handlers_test

import (
	"net/http"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlersTestSuite) TestListProviders() {
	suite.providerSvc.On("ListProviders", mock.Anything).Return([]domain.Provider{
		{Name: domain.ProviderCurrencyBeacon, Priority: 1, ActiveFlag: true, ActiveStatus: true},
		{Name: domain.ProviderMock, Priority: 10, ActiveFlag: true},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/providers", nil, suite.adminToken())

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.ProviderResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 2)
	suite.True(resp[0].ActiveStatus)
	suite.Equal(domain.ProviderMock, resp[1].Name)
}

func (suite *HandlersTestSuite) TestFailover_DefaultReason() {
	suite.providerSvc.On("Failover", mock.Anything, "manual").
		Return(&domain.FailoverResult{Deactivated: domain.ProviderCurrencyBeacon, Activated: domain.ProviderMock}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/providers/failover", nil, suite.adminToken())

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.FailoverResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ProviderCurrencyBeacon, resp.Deactivated)
	suite.Equal(domain.ProviderMock, resp.Activated)
}

func (suite *HandlersTestSuite) TestFailover_WithReason() {
	suite.providerSvc.On("Failover", mock.Anything, "maintenance window").
		Return(&domain.FailoverResult{Deactivated: domain.ProviderCurrencyBeacon, Activated: domain.ProviderMock}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/providers/failover", dto.FailoverRequest{Reason: "maintenance window"}, suite.adminToken())

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestFailover_NoFallback() {
	suite.providerSvc.On("Failover", mock.Anything, "manual").Return(
		&domain.FailoverResult{Deactivated: domain.ProviderMock},
		apperrors.NewRateError(apperrors.ErrNoFallbackAvailable, "provider mock was deactivated and no fallback provider is available"),
	).Once()

	w := suite.do(http.MethodPost, "/api/v1/providers/failover", nil, suite.adminToken())

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Equal(domain.ProviderMock, resp["deactivated"])
	suite.Contains(resp["error"], "no fallback")
}

func (suite *HandlersTestSuite) TestFailover_NoActiveProvider() {
	suite.providerSvc.On("Failover", mock.Anything, "manual").
		Return(nil, apperrors.NewRateError(apperrors.ErrNoProviderAvailable, "No provider available at the moment.")).Once()

	w := suite.do(http.MethodPost, "/api/v1/providers/failover", nil, suite.adminToken())

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.JSONEq(`{"error":"No provider available at the moment."}`, w.Body.String())
}
