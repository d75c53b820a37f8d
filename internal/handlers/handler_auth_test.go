package handlers_test

import (
	"net/http"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlersTestSuite) TestLogin() {
	expiresAt := time.Date(2024, time.March, 15, 13, 0, 0, 0, time.UTC)
	suite.authSvc.On("Login", mock.Anything, testAdmin, "s3cret").Return("signed-token", expiresAt, nil).Once()

	w := suite.do(http.MethodPost, "/auth/login", dto.LoginRequest{Username: testAdmin, Password: "s3cret"}, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.Equal("signed-token", resp.Token)
	suite.True(expiresAt.Equal(resp.ExpiresAt))
	suite.Equal("3", w.Header().Get("X-RateLimit-Limit"))
}

func (suite *HandlersTestSuite) TestLogin_BadCredentials() {
	suite.authSvc.On("Login", mock.Anything, testAdmin, "wrong").
		Return("", time.Time{}, apperrors.NewAppError(http.StatusUnauthorized, "Invalid username or password", apperrors.ErrUnauthorized)).Once()

	w := suite.do(http.MethodPost, "/auth/login", dto.LoginRequest{Username: testAdmin, Password: "wrong"}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"error":"Invalid username or password"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestLogin_MissingFields() {
	w := suite.do(http.MethodPost, "/auth/login", map[string]string{"username": testAdmin}, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.authSvc.AssertNotCalled(suite.T(), "Login")
}

func (suite *HandlersTestSuite) TestLogin_RateLimited() {
	suite.authSvc.On("Login", mock.Anything, testAdmin, "wrong").
		Return("", time.Time{}, apperrors.NewAppError(http.StatusUnauthorized, "Invalid username or password", apperrors.ErrUnauthorized)).Times(3)

	for i := 0; i < 3; i++ {
		w := suite.do(http.MethodPost, "/auth/login", dto.LoginRequest{Username: testAdmin, Password: "wrong"}, "")
		suite.Equal(http.StatusUnauthorized, w.Code)
	}

	w := suite.do(http.MethodPost, "/auth/login", dto.LoginRequest{Username: testAdmin, Password: "wrong"}, "")

	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
}
