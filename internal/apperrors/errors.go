package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that no authenticated identity was supplied.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the authenticated user lacks the required capability.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal indicates an unexpected infrastructure failure. Details are
// logged server-side and never surfaced to callers.
var ErrInternal = errors.New("internal error")

// ErrInsufficientBalance is the defining failure of the accounting engine.
// Use InsufficientBalanceError to carry the shortfall details.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInvalidRate indicates an FX rate was missing, zero or negative.
var ErrInvalidRate = errors.New("invalid exchange rate")

// AppError wraps a lower-level error with an HTTP-ish status code and a
// caller-safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches apperrors.ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// Names for the balance an InsufficientBalanceError draws from.
const (
	BalanceAvailable = "available"
	BalanceLocked    = "locked"
)

// InsufficientBalanceError reports an attempted debit or lock that exceeds
// the balance it draws from. Balance names which bucket fell short, and
// Available holds that bucket's value; the operation never clamps or
// partially applies.
type InsufficientBalanceError struct {
	CurrencyCode string
	Balance      string
	Available    decimal.Decimal
	Required     decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	balance := e.Balance
	if balance == "" {
		balance = BalanceAvailable
	}
	return fmt.Sprintf("insufficient %s balance: have %s %s, need %s %s",
		balance, e.Available.String(), e.CurrencyCode, e.Required.String(), e.CurrencyCode)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Shortfall returns the amount by which the balance falls short.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// InvalidStateError reports a receipt transition attempted on a receipt that
// has already left PENDING.
type InvalidStateError struct {
	ReceiptID string
	Status    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("receipt %s already processed (status %s)", e.ReceiptID, e.Status)
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidBankAccountError reports a receipt referencing a bank account that
// does not exist or is not usable in the given direction.
type InvalidBankAccountError struct {
	BankAccountID string
	Reason        string
}

func (e *InvalidBankAccountError) Error() string {
	return fmt.Sprintf("invalid bank account %s: %s", e.BankAccountID, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *InvalidBankAccountError) Is(target error) bool {
	return target == ErrValidation
}
