package domain

import "errors"

var (
	// Amortization errors
	ErrInvalidTerms = errors.New("invalid amortization terms")

	// Lifecycle errors
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrTermsOutsideProduct = errors.New("approved terms outside product limits")
	ErrLTVExceeded         = errors.New("loan-to-value ratio exceeds product cap")
	ErrNotApproved         = errors.New("application has no approved terms")

	// Payment errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAccountNotPayable    = errors.New("account does not accept payments")
	ErrOverpayment          = errors.New("payment exceeds total outstanding debt")
	ErrDuplicateTransaction = errors.New("transaction number already processed")
	ErrInvariantViolation   = errors.New("ledger invariant violated")

	// Not-found errors
	ErrProductNotFound       = errors.New("loan product not found")
	ErrApplicationNotFound   = errors.New("loan application not found")
	ErrAccountNotFound       = errors.New("loan account not found")
	ErrScheduleEntryNotFound = errors.New("schedule entry not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
)
