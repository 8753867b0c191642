package vault

import "errors"

var (
	// ErrCredentialRequired indicates the caller holds no identity credential.
	ErrCredentialRequired = errors.New("vault: KYC credential required")
	// ErrStalePrice indicates the oracle observation is outside the
	// staleness window.
	ErrStalePrice = errors.New("vault: stale price")
	// ErrInvalidAmount indicates a zero or malformed amount.
	ErrInvalidAmount = errors.New("vault: invalid amount")
	// ErrInsufficientBalance indicates the caller's chi balance is short.
	ErrInsufficientBalance = errors.New("vault: insufficient balance")
	// ErrSlippageExceeded indicates the computed payout fell below the
	// caller's minimum.
	ErrSlippageExceeded = errors.New("vault: slippage exceeded")
	// ErrMustBeWholeUnit indicates a physical redemption that is not an
	// exact multiple of one chi.
	ErrMustBeWholeUnit = errors.New("vault: must be whole chi")
	// ErrUnauthorized indicates a non-owner calling an owner operation.
	ErrUnauthorized = errors.New("vault: caller is not the owner")
)
