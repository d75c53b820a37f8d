package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlersTestSuite) TestListCurrencies() {
	suite.currencySvc.On("ListCurrencies", mock.Anything).Return([]domain.Currency{
		{CurrencyCode: "CHF", Name: "Swiss franc", Symbol: "Fr."},
		{CurrencyCode: "EUR", Name: "Euro", Symbol: "€"},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.CurrencyResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 2)
	suite.Equal("CHF", resp[0].CurrencyCode)
	suite.Equal("€", resp[1].Symbol)
}

func (suite *HandlersTestSuite) TestListCurrencies_Error() {
	suite.currencySvc.On("ListCurrencies", mock.Anything).Return(nil, errors.New("db down")).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies", nil, "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.JSONEq(`{"error":"Failed to list currencies"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestGetCurrencyByCode() {
	suite.currencySvc.On("GetCurrencyByCode", mock.Anything, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$"}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies/usd", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	suite.decode(w, &resp)
	suite.Equal("US Dollar", resp.Name)
}

func (suite *HandlersTestSuite) TestGetCurrencyByCode_NotFound() {
	suite.currencySvc.On("GetCurrencyByCode", mock.Anything, "JPY").
		Return(nil, fmt.Errorf("lookup: %w", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies/JPY", nil, "")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGetCurrencyByCode_InvalidCode() {
	w := suite.do(http.MethodGet, "/api/v1/currencies/EURO", nil, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.currencySvc.AssertNotCalled(suite.T(), "GetCurrencyByCode")
}

func (suite *HandlersTestSuite) TestCreateCurrency() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "JPY", Symbol: "¥", Name: "Yen"}
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	suite.currencySvc.On("CreateCurrency", mock.Anything, req, testAdmin).Return(&domain.Currency{
		CurrencyCode: "JPY",
		Symbol:       "¥",
		Name:         "Yen",
		AuditFields:  domain.AuditFields{CreatedAt: now, CreatedBy: testAdmin, LastUpdatedAt: now, LastUpdatedBy: testAdmin},
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies", req, suite.adminToken())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.CurrencyResponse
	suite.decode(w, &resp)
	suite.Equal("JPY", resp.CurrencyCode)
	suite.Equal(testAdmin, resp.CreatedBy)
}

func (suite *HandlersTestSuite) TestCreateCurrency_Duplicate() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "EUR", Symbol: "€", Name: "Euro"}
	suite.currencySvc.On("CreateCurrency", mock.Anything, req, testAdmin).
		Return(nil, apperrors.NewAppError(http.StatusConflict, "currency already exists", apperrors.ErrDuplicate)).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies", req, suite.adminToken())

	suite.Equal(http.StatusConflict, w.Code)
	suite.JSONEq(`{"error":"Currency code 'EUR' already exists"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestCreateCurrency_InvalidBody() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "jp", Symbol: "¥", Name: "Yen"}

	w := suite.do(http.MethodPost, "/api/v1/currencies", req, suite.adminToken())

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.currencySvc.AssertNotCalled(suite.T(), "CreateCurrency")
}

func (suite *HandlersTestSuite) TestCreateCurrency_RequiresToken() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "JPY", Symbol: "¥", Name: "Yen"}

	w := suite.do(http.MethodPost, "/api/v1/currencies", req, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.currencySvc.AssertNotCalled(suite.T(), "CreateCurrency")
}
