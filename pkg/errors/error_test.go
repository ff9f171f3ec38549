package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidSymbol, "symbol is empty")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidSymbol, err.Code)
	suite.Equal("symbol is empty", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidPreset, "unknown preset: %s", "2W")
	suite.Equal(ErrCodeInvalidPreset, err.Code)
	suite.Equal("unknown preset: 2W", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeMarketDataFetchFailed, "chart request failed", cause)
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("timeout")
	err := Wrapf(ErrCodeDataUnavailable, cause, "no bars for %s", "TSLA")
	suite.Equal("no bars for TSLA", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeDataNotFound, "No data found for the symbol")
	suite.Equal("[200] No data found for the symbol", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	err := Wrap(ErrCodeMarketDataFetchFailed, "chart request failed", errors.New("eof"))
	suite.Equal("[700] chart request failed: eof", err.Error())
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	inner := New(ErrCodeDataNotFound, "No data found for the symbol")
	wrapped := fmt.Errorf("fetch ZZZZ: %w", inner)
	suite.Equal(ErrCodeDataNotFound, GetCode(wrapped))
	suite.True(HasCode(wrapped, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestGetCodeFromPlainError() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.False(HasCode(errors.New("plain"), ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestDescribe() {
	suite.Equal("", Describe(nil))
	suite.Equal("plain", Describe(errors.New("plain")))

	coded := Wrap(ErrCodeDataNotFound, "No data found for the symbol", errors.New("empty frame"))
	suite.Equal("No data found for the symbol", Describe(coded))
	suite.Equal("No data found for the symbol", Describe(fmt.Errorf("outer: %w", coded)))
}

func (suite *ErrorTestSuite) TestIsDataUnavailable() {
	suite.True(IsDataUnavailable(New(ErrCodeDataNotFound, "x")))
	suite.True(IsDataUnavailable(New(ErrCodeDataUnavailable, "x")))
	suite.True(IsDataUnavailable(New(ErrCodeMarketDataFetchFailed, "x")))
	suite.False(IsDataUnavailable(New(ErrCodeInvalidAction, "x")))
	suite.False(IsDataUnavailable(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	base := New(ErrCodeSessionNotFound, "session not found")
	wrapped := fmt.Errorf("lookup: %w", base)
	suite.True(Is(wrapped, base))

	var target *Error
	suite.True(As(wrapped, &target))
	suite.Equal(ErrCodeSessionNotFound, target.Code)
}
