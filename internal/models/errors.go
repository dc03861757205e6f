package models

import "errors"

// Typed failures surfaced by the draw, randomness and prize services.
// Callers branch on these with errors.Is; services wrap them with context.
var (
	// ErrInvalidPhase is returned when an operation is attempted while the
	// draw is not in the phase the operation requires.
	ErrInvalidPhase = errors.New("operation not allowed in current draw phase")

	// ErrInvalidQuantity is returned when a purchase quantity is outside
	// [1, maxPerPurchase].
	ErrInvalidQuantity = errors.New("invalid ticket quantity")

	// ErrInvalidPayment is returned when the paid amount does not equal
	// price x quantity exactly.
	ErrInvalidPayment = errors.New("payment does not match ticket price")

	// ErrUnauthorized is returned when the caller lacks the capability the
	// operation requires.
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrDuplicateRequest is returned when a randomness request already
	// exists for the draw.
	ErrDuplicateRequest = errors.New("randomness request already exists for draw")

	// ErrAlreadyFulfilled is returned when a fulfillment is delivered twice
	// for the same request.
	ErrAlreadyFulfilled = errors.New("randomness request already fulfilled")

	// ErrInsufficientEntries is returned when a draw holds fewer entries
	// than winner selection requires.
	ErrInsufficientEntries = errors.New("not enough entries for winner selection")

	// ErrTransferFailure is returned when an outbound value transfer did
	// not succeed.
	ErrTransferFailure = errors.New("value transfer failed")

	// ErrInvalidSeed is returned when a fulfillment seed is not a 32-byte
	// hex value.
	ErrInvalidSeed = errors.New("invalid randomness seed")

	// ErrInvalidSetting is returned when an administrative setter receives
	// an out-of-bounds value.
	ErrInvalidSetting = errors.New("invalid setting value")

	ErrDrawNotFound         = errors.New("draw not found")
	ErrRequestNotFound      = errors.New("randomness request not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrDistributionNotFound = errors.New("prize distribution not found")
	ErrSettingNotFound      = errors.New("setting not found")
)
