package services

import "net/http"

// ErrorCode groups service failures into the categories the API reports.
type ErrorCode string

const (
	CodeValidation           ErrorCode = "VALIDATION"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeConflict             ErrorCode = "CONFLICT"
	CodeForbidden            ErrorCode = "FORBIDDEN"
	CodeExternalVerification ErrorCode = "EXTERNAL_VERIFICATION"
)

// Error is a typed service failure. Handlers surface it to the API boundary
// unmodified; the Fiber error handler maps Status and Code onto the response.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

func forbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// Every public ledger operation fails with exactly one of these.
var (
	ErrInsufficientStock = conflictError("insufficient stock")
	ErrProductNotFound   = notFoundError("product not found")

	ErrCodeNotFound     = notFoundError("discount code not found")
	ErrCodeExpired      = conflictError("discount code is not active")
	ErrCodeLimitReached = conflictError("discount code usage limit reached")
	ErrCodeBelowMinimum = conflictError("order value below code minimum")
	ErrCodeAlreadyUsed  = conflictError("discount code already used by this account")
	ErrDuplicateClaim   = conflictError("discount code already claimed")

	ErrOrderNotFound       = notFoundError("order not found")
	ErrInvalidTransition   = conflictError("invalid order status transition")
	ErrOrderNotCancellable = conflictError("order can no longer be cancelled")
	ErrNotOrderOwner       = forbiddenError("order belongs to another account")

	ErrPaymentNotFound     = notFoundError("payment not found")
	ErrPaymentNotPending   = conflictError("payment is not pending")
	ErrPaymentNotCompleted = conflictError("payment is not completed")
	ErrRefundTooLarge      = validationError("refund amount exceeds payment amount")

	ErrSignatureMismatch = &Error{
		Code:    CodeExternalVerification,
		Status:  http.StatusBadRequest,
		Message: "gateway signature verification failed",
	}

	ErrShipperNotFound    = notFoundError("shipper not found")
	ErrNotShipper         = validationError("user does not hold the shipper role")
	ErrNotAssignedShipper = forbiddenError("order is assigned to another shipper")

	ErrAlreadyRated      = conflictError("order has already been rated")
	ErrOrderNotDelivered = conflictError("order has not been delivered")
	ErrInvalidRating     = validationError("rating must be between 1 and 5")
)
