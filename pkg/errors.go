package pkg

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ExposeErrorDetails = false

func init() {
	if gin.DebugMode == gin.Mode() || gin.TestMode == gin.Mode() {
		ExposeErrorDetails = true
	}
}

// Ledger errors. Every AppError raised by the ledger wraps one of these as its cause.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrSenderNotFound    = errors.New("sender not found")
	ErrReceiverNotFound  = errors.New("receiver not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateAccount  = errors.New("duplicate account")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSameAccount       = errors.New("same account")
)

// ErrorCode defines a standardized error code
type ErrorCode struct {
	Code    string
	Status  int
	Message string // default message
}

var (
	// Generic app
	ErrInvalidInputCode = ErrorCode{Code: "APP_INVALID_INPUT", Status: http.StatusBadRequest, Message: "invalid input"}
	ErrServerCode       = ErrorCode{Code: "APP_INTERNAL", Status: http.StatusInternalServerError, Message: "internal server error"}
	ErrRateLimitedCode  = ErrorCode{Code: "APP_RATE_LIMITED", Status: http.StatusTooManyRequests, Message: "too many requests"}

	// Ledger rules. Clients of the ledger treat every rejection as a bad request.
	ErrAccountNotFoundCode   = ErrorCode{Code: "LEDGER_ACCOUNT_NOT_FOUND", Status: http.StatusBadRequest, Message: "invalid account id"}
	ErrSenderNotFoundCode    = ErrorCode{Code: "LEDGER_SENDER_NOT_FOUND", Status: http.StatusBadRequest, Message: "invalid sender account details"}
	ErrReceiverNotFoundCode  = ErrorCode{Code: "LEDGER_RECEIVER_NOT_FOUND", Status: http.StatusBadRequest, Message: "invalid receiver account details"}
	ErrInsufficientFundsCode = ErrorCode{Code: "LEDGER_INSUFFICIENT_FUNDS", Status: http.StatusBadRequest, Message: "insufficient account balance in sender account"}
	ErrDuplicateAccountCode  = ErrorCode{Code: "LEDGER_DUPLICATE_ACCOUNT", Status: http.StatusBadRequest, Message: "account already exists in the system"}
	ErrInvalidAmountCode     = ErrorCode{Code: "LEDGER_INVALID_AMOUNT", Status: http.StatusBadRequest, Message: "transfer amount must be greater than zero"}
	ErrSameAccountCode       = ErrorCode{Code: "LEDGER_SAME_ACCOUNT", Status: http.StatusBadRequest, Message: "sender and receiver accounts cannot be the same"}
)

type AppError struct {
	Code    ErrorCode
	Message string // public-facing message
	Cause   error  // internal cause (wrapped)
}

func (e AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
func (e AppError) Unwrap() error { return e.Cause }

func NewAppError(code ErrorCode, msg string, cause error) error {
	return AppError{Code: code, Message: msg, Cause: cause}
}

// ErrorResponse defines the standardized error response format
type ErrorResponse struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ToErrorResponse converts an error into an ErrorResponse, logging details and optionally exposing error messages.
// If the error is not an AppError, it is converted to a generic 500 error.
func ToErrorResponse(logger *zap.Logger, traceID string, err error) ErrorResponse {
	var appErr AppError
	if errors.As(err, &appErr) {
		resp := ErrorResponse{
			Status:  appErr.Code.Status,
			Code:    appErr.Code.Code,
			Message: appErr.Message,
		}
		if appErr.Code.Status >= http.StatusInternalServerError {
			logger.Error("application error", zap.String(TraceId, traceID), zap.Error(err))
		} else {
			logger.Warn("request rejected", zap.String(TraceId, traceID), zap.String("code", appErr.Code.Code), zap.Error(err))
		}
		if ExposeErrorDetails {
			resp.Details = err.Error()
		}
		return resp
	}
	// Unknown error : 500
	resp := ErrorResponse{
		Status:  ErrServerCode.Status,
		Code:    ErrServerCode.Code,
		Message: ErrServerCode.Message,
	}
	logger.Error("application error", zap.String(TraceId, traceID), zap.Error(err))
	if ExposeErrorDetails {
		resp.Details = err.Error()
	}
	return resp
}
