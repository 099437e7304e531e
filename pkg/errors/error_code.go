package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidShares        ErrorCode = 102
	ErrCodeInvalidStopPrice     ErrorCode = 103
	ErrCodeInvalidLimitPrice    ErrorCode = 104
	ErrCodeInvalidPrice         ErrorCode = 105
	ErrCodeNilPosition          ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound         ErrorCode = 200
	ErrCodeQueryFailed          ErrorCode = 202
	ErrCodeBarPastEnd           ErrorCode = 210
	ErrCodeBarIndexOutOfRange   ErrorCode = 211
	ErrCodeNoBarSource          ErrorCode = 212
	ErrCodeSignalDispatchFailed ErrorCode = 213

	// Position errors (500-599)
	ErrCodePositionIdNotFound               ErrorCode = 500
	ErrCodeClosingAlreadyClosed             ErrorCode = 501
	ErrCodeClosingPositionOnDifferentSymbol ErrorCode = 502
	ErrCodeSellingShortPosition             ErrorCode = 503
	ErrCodeCoveringLongPosition             ErrorCode = 504
	ErrCodeDuplicatePositionId              ErrorCode = 505

	// Backtest errors (600-699)
	ErrCodeBacktestStateNil   ErrorCode = 600
	ErrCodeBacktestNoStrategy ErrorCode = 601
)
