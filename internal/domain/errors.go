package domain

import "errors"

// Sentinel errors — use with errors.Is(). Handlers translate these into the
// uniform {"success": false, "message": ...} JSON body: precondition and
// state errors map to 400, not-found to 404, anything else to an opaque 500.
var (
	// ErrInsufficientBalance is returned when a debit would push a balance
	// below zero. The operation is rejected whole: no balance change, no
	// ledger row.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidStateTransition is returned when acting on a withdrawal or
	// pending reward that is not in the pending state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrConfigNotSet is returned when an operation depends on an admin rate
	// that has never been configured.
	ErrConfigNotSet = errors.New("admin configuration not set")

	// ErrKYCNotVerified is returned when a withdrawal names a payout method
	// that is not accepted, or whose record id does not match.
	ErrKYCNotVerified = errors.New("payout method not verified")

	// ErrProfileIncomplete is returned when a gated action requires a
	// completed profile.
	ErrProfileIncomplete = errors.New("profile incomplete")

	// ErrReviewNotAccepted is returned when a gated action requires the
	// admin review to have passed.
	ErrReviewNotAccepted = errors.New("review not accepted")

	// ErrBelowMinimum is returned when a withdrawal's coin cost is below the
	// configured minimum.
	ErrBelowMinimum = errors.New("amount below configured minimum")

	// ErrNotFound is returned when a referenced user or record does not
	// exist.
	ErrNotFound = errors.New("record not found")
)
