package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSymbol        ErrorCode = 102
	ErrCodeInvalidPreset        ErrorCode = 103
	ErrCodeInvalidAction        ErrorCode = 104
	ErrCodeInvalidVersion       ErrorCode = 106

	// Data errors (200-299)
	ErrCodeDataNotFound    ErrorCode = 200
	ErrCodeDataUnavailable ErrorCode = 201

	// Store errors (300-399)
	ErrCodeStoreOpenFailed  ErrorCode = 300
	ErrCodeStoreQueryFailed ErrorCode = 301
	ErrCodeStoreWriteFailed ErrorCode = 302

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704

	// Session errors (800-899)
	ErrCodeSessionNotFound ErrorCode = 800
	ErrCodeRenderFailed    ErrorCode = 801
)
